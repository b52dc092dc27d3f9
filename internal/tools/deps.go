// Package tools implements the operations the model may invoke during a
// generation run. Every tool validates its own preconditions against the
// shared run state and returns a structured JSON result; failures are
// results, not errors, so the model can react on its next turn.
package tools

import (
	"github.com/quillworks/quill/internal/branding"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/research"
	"github.com/quillworks/quill/internal/store"
)

// Deps is everything a tool may touch: the run state, the durable store,
// and the external capabilities. One Deps instance serves one run.
type Deps struct {
	State *orchestrator.OrchestrationState
	Store *store.Store

	Search  research.Searcher
	Extract research.Extractor
	Crawl   research.Crawler
	Index   *research.Index

	Logos    branding.LogoFetcher
	OGImages branding.OGImageGenerator
}
