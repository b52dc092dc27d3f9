package research

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// IndexedDoc is one piece of fetched material held in the run's index.
type IndexedDoc struct {
	ID         string
	ResearchID string
	Source     string // "search" | "extract" | "crawl"
	URL        string
	Title      string
	Text       string
}

// IndexHit is one result of a topical query over stored research.
type IndexHit struct {
	ID         string
	ResearchID string
	Source     string
	URL        string
	Title      string
	Score      float64
}

// Index is an in-memory full-text index over everything research fetched
// during one run. It backs topical retrieval without re-fetching.
type Index struct {
	idx bleve.Index
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildResearchMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create research index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func buildResearchMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()

	// Stored identifier fields, not analyzed.
	for _, name := range []string{"research_id", "source", "url"} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		f.Index = true
		docMapping.AddFieldMappingsAt(name, f)
	}

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = true
	titleField.Index = true
	docMapping.AddFieldMappingsAt("title", titleField)

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	textField.Store = false
	textField.Index = true
	docMapping.AddFieldMappingsAt("text", textField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Add indexes one document.
func (x *Index) Add(doc IndexedDoc) error {
	return x.idx.Index(doc.ID, map[string]interface{}{
		"research_id": doc.ResearchID,
		"source":      doc.Source,
		"url":         doc.URL,
		"title":       doc.Title,
		"text":        doc.Text,
	})
}

// AddBatch indexes several documents in one batch.
func (x *Index) AddBatch(docs []IndexedDoc) error {
	batch := x.idx.NewBatch()
	for _, doc := range docs {
		err := batch.Index(doc.ID, map[string]interface{}{
			"research_id": doc.ResearchID,
			"source":      doc.Source,
			"url":         doc.URL,
			"title":       doc.Title,
			"text":        doc.Text,
		})
		if err != nil {
			return fmt.Errorf("failed to batch doc %s: %w", doc.ID, err)
		}
	}
	return x.idx.Batch(batch)
}

// Search runs a topical match query, optionally filtered to one source
// type, returning the top k hits.
func (x *Index) Search(query, source string, k int) ([]IndexHit, error) {
	if k <= 0 {
		k = 5
	}

	matchQuery := bleve.NewMatchQuery(query)

	var req *bleve.SearchRequest
	if source != "" {
		sourceQuery := bleve.NewTermQuery(source)
		sourceQuery.SetField("source")
		req = bleve.NewSearchRequest(bleve.NewConjunctionQuery(matchQuery, sourceQuery))
	} else {
		req = bleve.NewSearchRequest(matchQuery)
	}
	req.Size = k
	req.Fields = []string{"research_id", "source", "url", "title"}

	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("research index search failed: %w", err)
	}

	hits := make([]IndexHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := IndexHit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["research_id"].(string); ok {
			hit.ResearchID = v
		}
		if v, ok := h.Fields["source"].(string); ok {
			hit.Source = v
		}
		if v, ok := h.Fields["url"].(string); ok {
			hit.URL = v
		}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DocCount reports how many documents the index holds.
func (x *Index) DocCount() (uint64, error) {
	return x.idx.DocCount()
}

// Close releases the index.
func (x *Index) Close() error {
	return x.idx.Close()
}
