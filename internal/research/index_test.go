package research

import (
	"testing"
)

func seedIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	docs := []IndexedDoc{
		{ID: "d1", ResearchID: "r1", Source: "search", URL: "https://example.com/pools", Title: "Worker Pools", Text: "Bounded worker pools with channels and wait groups."},
		{ID: "d2", ResearchID: "r1", Source: "extract", URL: "https://example.com/ctx", Title: "Context Guide", Text: "Cancellation and deadlines with context propagation."},
		{ID: "d3", ResearchID: "r2", Source: "crawl", URL: "https://example.com/docs/sched", Title: "Scheduler Docs", Text: "How the runtime scheduler multiplexes goroutines."},
	}
	if err := idx.AddBatch(docs); err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	return idx
}

func TestIndexSearch(t *testing.T) {
	idx := seedIndex(t)

	count, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 docs, got %d", count)
	}

	hits, err := idx.Search("worker pools", "", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("Expected hits for worker pools")
	}
	if hits[0].ID != "d1" {
		t.Errorf("Expected d1 as the top hit, got %s", hits[0].ID)
	}
	if hits[0].URL != "https://example.com/pools" || hits[0].Title != "Worker Pools" {
		t.Errorf("Stored fields not returned: %+v", hits[0])
	}
	if hits[0].ResearchID != "r1" {
		t.Errorf("Expected research id r1, got %s", hits[0].ResearchID)
	}
}

func TestIndexSearchSourceFilter(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Search("goroutines scheduler", "crawl", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected exactly one crawl hit, got %d", len(hits))
	}
	if hits[0].Source != "crawl" {
		t.Errorf("Expected crawl source, got %s", hits[0].Source)
	}

	// Same query restricted to a source with no matching docs.
	hits, err = idx.Search("goroutines scheduler", "extract", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no extract hits, got %d", len(hits))
	}
}

func TestIndexAddSingle(t *testing.T) {
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	defer idx.Close()

	err = idx.Add(IndexedDoc{ID: "solo", ResearchID: "r9", Source: "search", URL: "https://example.com", Title: "Solo Doc", Text: "A single indexed document."})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	hits, err := idx.Search("single indexed document", "", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "solo" {
		t.Errorf("Expected the solo doc, got %+v", hits)
	}
}
