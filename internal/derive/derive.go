// Package derive computes the fields the persistence layer stores alongside
// raw content: slugs, read times, excerpts and SEO metadata. Save tools use
// these as fallbacks when the model omits optional fields.
package derive

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const wordsPerMinute = 200

// MaxExcerptLen is the ceiling for generated excerpts and meta descriptions.
const MaxExcerptLen = 160

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
	headingLine   = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)
	markdownNoise = regexp.MustCompile("[*_`#>\\[\\]()!]")
	whitespace    = regexp.MustCompile(`\s+`)
)

// Slugify converts a title into a URL-safe slug base.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// NewSlug returns slugify(title)-<uuid-fragment>. The random suffix makes
// collisions effectively impossible; the store still retries on a unique
// constraint violation.
func NewSlug(title string) string {
	return Slugify(title) + "-" + uuid.NewString()[:8]
}

// ReadTime estimates reading time in minutes at 200 wpm, minimum 1.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := words / wordsPerMinute
	if words%wordsPerMinute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// TitleFrom extracts a title from content: the first markdown heading, or
// the first non-empty line truncated to a sane length.
func TitleFrom(content string) string {
	if m := headingLine.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(markdownNoise.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if len(line) > 80 {
			line = strings.TrimSpace(line[:80])
		}
		return line
	}
	return ""
}

// ExcerptFrom builds a plain-text excerpt from markdown content.
func ExcerptFrom(content string) string {
	text := headingLine.ReplaceAllString(content, "")
	text = markdownNoise.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if len(text) > MaxExcerptLen {
		cut := strings.LastIndex(text[:MaxExcerptLen], " ")
		if cut < MaxExcerptLen/2 {
			cut = MaxExcerptLen - 3
		}
		text = strings.TrimSpace(text[:cut]) + "..."
	}
	return text
}

// MetaTitle derives an SEO title from the content title.
func MetaTitle(title string) string {
	if len(title) <= 60 {
		return title
	}
	return strings.TrimSpace(title[:57]) + "..."
}

// MetaDescription derives an SEO description from the excerpt.
func MetaDescription(excerpt string) string {
	if len(excerpt) <= MaxExcerptLen {
		return excerpt
	}
	return strings.TrimSpace(excerpt[:MaxExcerptLen-3]) + "..."
}

// tagKeywords maps canonical tags to the keywords that imply them.
var tagKeywords = map[string][]string{
	"golang":     {"golang", " go ", "goroutine"},
	"javascript": {"javascript", "typescript", "node.js", "nodejs"},
	"react":      {"react", "next.js", "nextjs"},
	"python":     {"python", "django", "flask"},
	"database":   {"database", "postgres", "sqlite", "mysql", "sql"},
	"ai":         {" ai ", "llm", "machine learning", "neural"},
	"devops":     {"docker", "kubernetes", "ci/cd", "deployment"},
	"tutorial":   {"tutorial", "step by step", "getting started", "how to"},
	"webdev":     {"frontend", "backend", "web development", "http", "api"},
	"security":   {"security", "authentication", "encryption", "oauth"},
}

// MatchTags derives tags from content by keyword matching. Returns at most
// five tags, deterministically ordered.
func MatchTags(content string) []string {
	lower := " " + strings.ToLower(content) + " "

	// Stable iteration order for deterministic output
	canonical := []string{"golang", "javascript", "react", "python", "database", "ai", "devops", "tutorial", "webdev", "security"}

	var tags []string
	for _, tag := range canonical {
		for _, kw := range tagKeywords[tag] {
			if strings.Contains(lower, kw) {
				tags = append(tags, tag)
				break
			}
		}
		if len(tags) == 5 {
			break
		}
	}
	return tags
}
