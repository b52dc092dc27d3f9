package orchestrator

// SavedItem is one persisted content item in the final result.
type SavedItem struct {
	DBID  int64  `json:"dbId"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// SavedItems groups the run's persisted items by kind.
type SavedItems struct {
	Blogs     []SavedItem `json:"blogs"`
	Articles  []SavedItem `json:"articles"`
	Resources []SavedItem `json:"resources"`
}

// Result is the structured outcome of one generation run. Partial success
// is a valid outcome: a truncated run still reports whatever was saved.
type Result struct {
	Success        bool       `json:"success"`
	Truncated      bool       `json:"truncated"`
	StopReason     StopReason `json:"stopReason"`
	StopDetail     string     `json:"stopDetail,omitempty"`
	SavedItems     SavedItems `json:"savedItems"`
	DurationMs     int64      `json:"durationMs"`
	IterationsUsed int        `json:"iterationsUsed"`
	CreditsUsed    float64    `json:"creditsUsed"`
	Errors         []string   `json:"errors"`
}

// buildResult snapshots the final state into the caller-facing result.
func buildResult(state *OrchestrationState, verdict Verdict, iterations int, durationMs int64) *Result {
	res := &Result{
		Truncated:      verdict.Reason == StopIterationCeiling || verdict.Reason == StopStalled || verdict.Reason == StopRepetitiveOutput,
		StopReason:     verdict.Reason,
		StopDetail:     verdict.Detail,
		DurationMs:     durationMs,
		IterationsUsed: iterations,
		CreditsUsed:    state.CreditsUsed,
		Errors:         state.Errors,
	}
	for _, it := range state.Items[KindBlog] {
		if it.Saved {
			res.SavedItems.Blogs = append(res.SavedItems.Blogs, savedItem(it))
		}
	}
	for _, it := range state.Items[KindArticle] {
		if it.Saved {
			res.SavedItems.Articles = append(res.SavedItems.Articles, savedItem(it))
		}
	}
	for _, it := range state.Items[KindResource] {
		if it.Saved {
			res.SavedItems.Resources = append(res.SavedItems.Resources, savedItem(it))
		}
	}
	res.Success = !res.Truncated && len(state.Errors) == 0 && state.AllSatisfied()
	return res
}

func savedItem(it *ContentItem) SavedItem {
	return SavedItem{DBID: it.DBID, Title: it.Title, Slug: it.Slug}
}
