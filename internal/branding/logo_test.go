package branding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDomainFromHints(t *testing.T) {
	tests := []struct {
		name  string
		res   string
		hints LogoHints
		want  string
	}{
		{
			name:  "Official URL wins",
			res:   "CoolLib",
			hints: LogoHints{OfficialURL: "https://www.coollib.dev/docs", GithubURL: "https://github.com/x/y"},
			want:  "coollib.dev",
		},
		{
			name:  "GitHub URL fallback",
			res:   "CoolLib",
			hints: LogoHints{GithubURL: "https://github.com/x/y"},
			want:  "github.com",
		},
		{
			name: "Single-word name guesses a domain",
			res:  "Redis",
			want: "redis.com",
		},
		{
			name: "Multi-word name gives up",
			res:  "Some Long Product Name",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domainFromHints(tt.res, tt.hints); got != tt.want {
				t.Errorf("domainFromHints(%q, %+v) = %q, want %q", tt.res, tt.hints, got, tt.want)
			}
		})
	}
}

func TestClearbitFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/coollib.dev" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := &ClearbitFetcher{BaseURL: srv.URL, HTTP: srv.Client()}

	url, err := f.FetchLogo(context.Background(), "CoolLib", LogoHints{OfficialURL: "https://coollib.dev"})
	if err != nil {
		t.Fatalf("FetchLogo failed: %v", err)
	}
	if !strings.HasSuffix(url, "/coollib.dev") {
		t.Errorf("Unexpected logo url %q", url)
	}

	if _, err := f.FetchLogo(context.Background(), "Unknown Product Thing", LogoHints{}); err == nil {
		t.Error("Expected error with no resolvable domain")
	}

	if _, err := f.FetchLogo(context.Background(), "nope", LogoHints{OfficialURL: "https://missing.example"}); err == nil {
		t.Error("Expected error when the logo service has no image")
	}
}

func TestTemplateOGGenerator(t *testing.T) {
	g := &TemplateOGGenerator{Endpoint: "https://og.example.com/render"}

	url, err := g.GenerateOGImage(context.Background(), "My Post", "a short excerpt")
	if err != nil {
		t.Fatalf("GenerateOGImage failed: %v", err)
	}
	if !strings.HasPrefix(url, "https://og.example.com/render?") {
		t.Errorf("Unexpected url %q", url)
	}
	if !strings.Contains(url, "title=My+Post") {
		t.Errorf("Title not encoded into %q", url)
	}

	empty := &TemplateOGGenerator{}
	if _, err := empty.GenerateOGImage(context.Background(), "x", ""); err == nil {
		t.Error("Expected error without an endpoint")
	}
}
