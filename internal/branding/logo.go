// Package branding covers the best-effort visual assets attached to saved
// content: resource logos and OG images. Failures here never fail a save.
package branding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LogoFetcher resolves a hosted logo URL for a resource.
type LogoFetcher interface {
	FetchLogo(ctx context.Context, resourceName string, hints LogoHints) (string, error)
}

// LogoHints narrow the logo lookup.
type LogoHints struct {
	OfficialURL string
	GithubURL   string
}

// OGImageGenerator produces a social-preview image URL for saved content.
type OGImageGenerator interface {
	GenerateOGImage(ctx context.Context, title, excerpt string) (string, error)
}

// ClearbitFetcher resolves logos through a logo-by-domain service and
// verifies the image actually exists before returning the URL.
type ClearbitFetcher struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClearbitFetcher builds the default logo fetcher.
func NewClearbitFetcher() *ClearbitFetcher {
	return &ClearbitFetcher{
		BaseURL: "https://logo.clearbit.com",
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *ClearbitFetcher) FetchLogo(ctx context.Context, resourceName string, hints LogoHints) (string, error) {
	domain := domainFromHints(resourceName, hints)
	if domain == "" {
		return "", fmt.Errorf("no domain to resolve a logo for %q", resourceName)
	}

	logoURL := f.BaseURL + "/" + domain
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, logoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("logo lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("no logo found for %s", domain)
	}
	return logoURL, nil
}

func domainFromHints(resourceName string, hints LogoHints) string {
	for _, raw := range []string{hints.OfficialURL, hints.GithubURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return strings.TrimPrefix(u.Host, "www.")
		}
	}
	// Fall back to guessing <name>.com for single-word names.
	name := strings.ToLower(strings.TrimSpace(resourceName))
	if name != "" && !strings.ContainsAny(name, " /") {
		return name + ".com"
	}
	return ""
}

// TemplateOGGenerator builds OG image URLs against a templated image
// service (title and excerpt as query parameters).
type TemplateOGGenerator struct {
	Endpoint string
}

func (g *TemplateOGGenerator) GenerateOGImage(ctx context.Context, title, excerpt string) (string, error) {
	if g.Endpoint == "" {
		return "", fmt.Errorf("og image endpoint not configured")
	}
	q := url.Values{}
	q.Set("title", title)
	if excerpt != "" {
		q.Set("excerpt", excerpt)
	}
	return g.Endpoint + "?" + q.Encode(), nil
}

// NopBranding satisfies both interfaces with no-ops, for runs where
// branding services are not configured.
type NopBranding struct{}

func (NopBranding) FetchLogo(context.Context, string, LogoHints) (string, error) {
	return "", fmt.Errorf("logo fetching disabled")
}

func (NopBranding) GenerateOGImage(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("og image generation disabled")
}
