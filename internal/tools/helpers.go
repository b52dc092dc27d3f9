package tools

import (
	"encoding/json"
	"fmt"

	"github.com/quillworks/quill/internal/orchestrator"
)

// jsonResult marshals a tool result map. Marshal failures collapse to a
// generic error payload so tools never return a Go error for formatting.
func jsonResult(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		return `{"success":false,"error":"failed to encode tool result"}`
	}
	return string(b)
}

func failure(msg string, extra ...map[string]any) string {
	m := map[string]any{"success": false, "error": msg}
	for _, e := range extra {
		for k, v := range e {
			m[k] = v
		}
	}
	return jsonResult(m)
}

// guidance builds the next-step fields attached to every successful
// mutation result. The model cannot see cumulative state on its own, so
// each tool tells it what remains and what to do next.
func guidance(s *orchestrator.OrchestrationState) map[string]any {
	remaining := map[string]int{}
	totalRemaining := 0
	for _, k := range orchestrator.Kinds {
		r := s.Requested(k) - s.SavedCount(k)
		if r < 0 {
			r = 0
		}
		remaining[string(k)] = r
		totalRemaining += r
	}

	return map[string]any{
		"remaining":   remaining,
		"is_complete": s.AllSatisfied(),
		"next_action": nextAction(s),
	}
}

func nextAction(s *orchestrator.OrchestrationState) string {
	if !s.Analysis.Complete {
		return "Call analyze_request to establish how many blogs, articles and resources are needed."
	}
	for _, k := range orchestrator.Kinds {
		for _, it := range s.Items[k] {
			if it.Saved && it.NeedsMoreContent {
				return fmt.Sprintf("Blog %d (%q) is waiting for more content. Call append_to_blog, with isLastPart=true on the final part.", it.DBID, it.Title)
			}
		}
	}
	for _, k := range orchestrator.Kinds {
		if r := s.Requested(k) - s.SavedCount(k); r > 0 {
			return fmt.Sprintf("Create and save the next %s (%d remaining). Research first if you need source material.", k, r)
		}
	}
	return "All requested content is saved. Summarize what was created."
}

// Argument extraction. The schema already validated types; these helpers
// normalize JSON's float64 numbers and absent keys.

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argBool(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func argInt64(args map[string]any, key string) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func argStrings(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
