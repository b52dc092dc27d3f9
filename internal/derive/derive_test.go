package derive

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"Simple title", "Getting Started with Go", "getting-started-with-go"},
		{"Punctuation stripped", "Go 1.24: What's New?", "go-1-24-what-s-new"},
		{"Leading and trailing noise", "  --Hello, World!--  ", "hello-world"},
		{"Empty title", "", "untitled"},
		{"Only symbols", "!!!", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestNewSlugUnique(t *testing.T) {
	a := NewSlug("My Post")
	b := NewSlug("My Post")

	if !strings.HasPrefix(a, "my-post-") {
		t.Errorf("Expected slug prefix my-post-, got %q", a)
	}
	if a == b {
		t.Errorf("Expected distinct slugs for repeated titles, got %q twice", a)
	}
}

func TestReadTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"Empty content", 0, 1},
		{"Short content", 50, 1},
		{"Exactly one minute", 200, 1},
		{"Just over one minute", 201, 2},
		{"Five minutes", 1000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.TrimSpace(strings.Repeat("word ", tt.words))
			if got := ReadTime(content); got != tt.want {
				t.Errorf("ReadTime(%d words) = %d, want %d", tt.words, got, tt.want)
			}
		})
	}
}

func TestTitleFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "First heading wins",
			content: "intro line\n# Real Title\nbody",
			want:    "Real Title",
		},
		{
			name:    "Subheading counts",
			content: "## Deep Dive into Channels\n\nbody text",
			want:    "Deep Dive into Channels",
		},
		{
			name:    "No heading falls back to first line",
			content: "Plain first line here\nsecond line",
			want:    "Plain first line here",
		},
		{
			name:    "Markdown noise stripped from fallback",
			content: "**Bold opener**\nrest",
			want:    "Bold opener",
		},
		{
			name:    "Empty content",
			content: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFrom(tt.content); got != tt.want {
				t.Errorf("TitleFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerptFrom(t *testing.T) {
	content := "# Heading\n\nThis is the *body* of the post. " + strings.Repeat("More words here. ", 30)
	excerpt := ExcerptFrom(content)

	if len(excerpt) > MaxExcerptLen+3 {
		t.Errorf("Excerpt too long: %d chars", len(excerpt))
	}
	if strings.Contains(excerpt, "Heading") {
		t.Errorf("Excerpt should not contain heading text: %q", excerpt)
	}
	if strings.Contains(excerpt, "*") {
		t.Errorf("Excerpt should not contain markdown noise: %q", excerpt)
	}
	if !strings.HasSuffix(excerpt, "...") {
		t.Errorf("Truncated excerpt should end with ellipsis: %q", excerpt)
	}

	short := ExcerptFrom("Just a short note.")
	if short != "Just a short note." {
		t.Errorf("Short content should pass through, got %q", short)
	}
}

func TestMetaTitle(t *testing.T) {
	short := "Short Title"
	if got := MetaTitle(short); got != short {
		t.Errorf("MetaTitle(%q) = %q, want unchanged", short, got)
	}

	long := strings.Repeat("x", 80)
	got := MetaTitle(long)
	if len(got) != 60 {
		t.Errorf("MetaTitle of long title should be 60 chars, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncated meta title should end with ellipsis: %q", got)
	}
}

func TestMatchTags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "Golang and database",
			content: "A golang tutorial about sqlite and goroutine patterns",
			want:    []string{"golang", "database", "tutorial"},
		},
		{
			name:    "No matches",
			content: "Completely unrelated gardening advice",
			want:    nil,
		},
		{
			name:    "At most five tags",
			content: "golang javascript react python sqlite llm docker tutorial http oauth",
			want:    []string{"golang", "javascript", "react", "python", "database"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchTags(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("MatchTags() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MatchTags()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
