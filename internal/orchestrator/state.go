// Package orchestrator drives the content-generation loop: a shared run
// state mutated by tools, a deterministic router that decides when the run
// is finished, and the driver that alternates model turns with tool
// execution until the router says stop.
package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentKind identifies one of the three content types a run can produce.
type ContentKind string

const (
	KindBlog     ContentKind = "blog"
	KindArticle  ContentKind = "article"
	KindResource ContentKind = "resource"
)

// Kinds lists all content kinds in canonical order.
var Kinds = []ContentKind{KindBlog, KindArticle, KindResource}

// ItemStatus is the lifecycle state of a tracked content item.
type ItemStatus string

const (
	StatusPending  ItemStatus = "pending"
	StatusDrafting ItemStatus = "drafting"
	StatusSaved    ItemStatus = "saved"
	StatusFailed   ItemStatus = "failed"
)

// ContentItem tracks one piece of content through the run. Once saved, the
// in-memory item and the durable row are two views of the same entity.
type ContentItem struct {
	TrackingID         string      `json:"trackingId"`
	Kind               ContentKind `json:"kind"`
	Title              string      `json:"title"`
	Status             ItemStatus  `json:"status"`
	Saved              bool        `json:"saved"`
	DBID               int64       `json:"dbId,omitempty"`
	Slug               string      `json:"slug,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	SavedAt            time.Time   `json:"savedAt,omitzero"`
	NeedsMoreContent   bool        `json:"needsMoreContent"`
	ContentParts       int         `json:"contentParts"`
	TotalContentLength int         `json:"totalContentLength"`
	Error              string      `json:"error,omitempty"`
}

// Analysis is the result of the analyze_request tool. Set exactly once; save
// tools refuse to operate until Complete is true.
type Analysis struct {
	Complete  bool                `json:"complete"`
	Requested map[ContentKind]int `json:"requested"`
	Reasoning string              `json:"reasoning"`
}

// ResearchEntry is one invocation of the research tool.
type ResearchEntry struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Type        string    `json:"type"` // "search" | "github" | "extract" | "crawl"
	ResultCount int       `json:"resultCount"`
	Credits     float64   `json:"credits"`
	Summary     string    `json:"summary,omitempty"`
	At          time.Time `json:"at"`
}

// ExtractedContent caches raw text pulled from a URL, linked to the research
// entry that fetched it.
type ExtractedContent struct {
	ResearchID string `json:"researchId"`
	URL        string `json:"url"`
	RawText    string `json:"rawText"`
}

// CrawledPage caches one page from a crawl, linked to its research entry.
type CrawledPage struct {
	ResearchID string `json:"researchId"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// IterationRecord is one entry of the per-turn audit trail.
type IterationRecord struct {
	Iteration   int       `json:"iteration"`
	ToolsCalled []string  `json:"toolsCalled"`
	TextOnly    bool      `json:"textOnly"`
	At          time.Time `json:"at"`
}

// OrchestrationState is the single mutable aggregate for one run. The driver
// owns it; tools and the router share it by reference. Access is
// single-threaded within a run, so no locking.
type OrchestrationState struct {
	RunID    string `json:"runId"`
	AuthorID int64  `json:"authorId"`

	Analysis Analysis                      `json:"analysis"`
	Items    map[ContentKind][]*ContentItem `json:"items"`

	Research  []ResearchEntry    `json:"research"`
	Extracted []ExtractedContent `json:"extracted"`
	Crawled   []CrawledPage      `json:"crawled"`

	IterationHistory []IterationRecord `json:"iterationHistory"`

	// CompletionFlags short-circuit "all requested items of this kind are
	// saved" without recounting.
	CompletionFlags map[ContentKind]bool `json:"completionFlags"`

	// CreatedResourceIDs records resources created during this run, so a
	// later save_article can fall back to one when the model omits the
	// association.
	CreatedResourceIDs []int64 `json:"createdResourceIds"`

	// LastCreatedBlogID is the append_to_blog fallback target.
	LastCreatedBlogID int64 `json:"lastCreatedBlogId"`

	CreditsUsed float64  `json:"creditsUsed"`
	Errors      []string `json:"errors"`

	StartedAt time.Time `json:"startedAt"`
}

// NewState builds a fresh run state with empty lists and flags.
func NewState(authorID int64) *OrchestrationState {
	return &OrchestrationState{
		RunID:    uuid.NewString(),
		AuthorID: authorID,
		Analysis: Analysis{Requested: map[ContentKind]int{}},
		Items: map[ContentKind][]*ContentItem{
			KindBlog:     {},
			KindArticle:  {},
			KindResource: {},
		},
		CompletionFlags: map[ContentKind]bool{},
		StartedAt:       time.Now(),
	}
}

// Requested returns the requested count for a kind, zero when analysis has
// not run or the kind was not requested.
func (s *OrchestrationState) Requested(kind ContentKind) int {
	return s.Analysis.Requested[kind]
}

// TotalRequested sums the requested counts across kinds.
func (s *OrchestrationState) TotalRequested() int {
	total := 0
	for _, k := range Kinds {
		total += s.Analysis.Requested[k]
	}
	return total
}

// SavedCount counts items of a kind that are fully saved. Items still
// awaiting appended content do not count.
func (s *OrchestrationState) SavedCount(kind ContentKind) int {
	n := 0
	for _, it := range s.Items[kind] {
		if it.Saved && !it.NeedsMoreContent {
			n++
		}
	}
	return n
}

// TotalSaved sums fully-saved items across kinds.
func (s *OrchestrationState) TotalSaved() int {
	total := 0
	for _, k := range Kinds {
		total += s.SavedCount(k)
	}
	return total
}

// TrackedCount counts non-failed items of a kind. This is the number the
// quantity ceiling compares against: an item that was created but still
// needs appended content already occupies a slot.
func (s *OrchestrationState) TrackedCount(kind ContentKind) int {
	n := 0
	for _, it := range s.Items[kind] {
		if it.Status != StatusFailed {
			n++
		}
	}
	return n
}

// KindSatisfied reports whether a kind's requested count is met, either by
// count or by an explicit completion flag.
func (s *OrchestrationState) KindSatisfied(kind ContentKind) bool {
	if s.CompletionFlags[kind] {
		return true
	}
	return s.SavedCount(kind) >= s.Requested(kind)
}

// AllSatisfied reports whether every kind has met its requested count.
func (s *OrchestrationState) AllSatisfied() bool {
	for _, k := range Kinds {
		if !s.KindSatisfied(k) {
			return false
		}
	}
	return true
}

// TrackItem appends a new item in drafting state and returns it.
func (s *OrchestrationState) TrackItem(kind ContentKind, title string) *ContentItem {
	it := &ContentItem{
		TrackingID: uuid.NewString(),
		Kind:       kind,
		Title:      title,
		Status:     StatusDrafting,
		CreatedAt:  time.Now(),
	}
	s.Items[kind] = append(s.Items[kind], it)
	return it
}

// FindItemByTitle returns the tracked item of a kind whose title matches
// case-insensitively, or nil.
func (s *OrchestrationState) FindItemByTitle(kind ContentKind, title string) *ContentItem {
	for _, it := range s.Items[kind] {
		if strings.EqualFold(it.Title, title) {
			return it
		}
	}
	return nil
}

// FindItemByDBID returns the tracked item of a kind with the given database
// id, or nil.
func (s *OrchestrationState) FindItemByDBID(kind ContentKind, dbID int64) *ContentItem {
	for _, it := range s.Items[kind] {
		if it.DBID == dbID {
			return it
		}
	}
	return nil
}

// MarkSaved transitions an item to saved and records its durable identity.
func (s *OrchestrationState) MarkSaved(it *ContentItem, dbID int64, slug string, contentLen int, needsMore bool) {
	it.Status = StatusSaved
	it.Saved = true
	it.DBID = dbID
	it.Slug = slug
	it.SavedAt = time.Now()
	it.NeedsMoreContent = needsMore
	it.ContentParts = 1
	it.TotalContentLength = contentLen
	if it.Kind == KindBlog {
		s.LastCreatedBlogID = dbID
	}
	if it.Kind == KindResource {
		s.CreatedResourceIDs = append(s.CreatedResourceIDs, dbID)
	}
	s.refreshCompletionFlag(it.Kind)
}

// RecordAppend updates a multi-part item after one appended part. The final
// part clears the needs-more flag, letting the item count as saved.
func (s *OrchestrationState) RecordAppend(it *ContentItem, totalLen int, last bool) {
	if it == nil {
		return
	}
	it.ContentParts++
	it.TotalContentLength = totalLen
	if last {
		it.NeedsMoreContent = false
		s.refreshCompletionFlag(it.Kind)
	}
}

// refreshCompletionFlag latches the per-kind completion flag once the
// requested count is met, so later recounts cannot un-satisfy a kind.
func (s *OrchestrationState) refreshCompletionFlag(kind ContentKind) {
	if s.Analysis.Complete && s.SavedCount(kind) >= s.Requested(kind) {
		s.CompletionFlags[kind] = true
	}
}

// MarkFailed transitions an item to failed and records the error on both
// the item and the run error log.
func (s *OrchestrationState) MarkFailed(it *ContentItem, err error) {
	it.Status = StatusFailed
	it.Error = err.Error()
	s.RecordError(fmt.Sprintf("%s %q: %v", it.Kind, it.Title, err))
}

// RecordError appends to the run-level error log.
func (s *OrchestrationState) RecordError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// RecordResearch appends a research entry and returns its id.
func (s *OrchestrationState) RecordResearch(entry ResearchEntry) string {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.At = time.Now()
	s.Research = append(s.Research, entry)
	s.CreditsUsed += entry.Credits
	return entry.ID
}

// RecordIteration appends one turn to the iteration history.
func (s *OrchestrationState) RecordIteration(iteration int, toolsCalled []string) {
	s.IterationHistory = append(s.IterationHistory, IterationRecord{
		Iteration:   iteration,
		ToolsCalled: toolsCalled,
		TextOnly:    len(toolsCalled) == 0,
		At:          time.Now(),
	})
}

// LastCreatedResourceID returns the most recently created resource of this
// run, or 0 when none exists.
func (s *OrchestrationState) LastCreatedResourceID() int64 {
	if len(s.CreatedResourceIDs) == 0 {
		return 0
	}
	return s.CreatedResourceIDs[len(s.CreatedResourceIDs)-1]
}

