package orchestrator

import (
	"strings"
	"testing"
)

func analyzedState(blogs, articles, resources int) *OrchestrationState {
	s := NewState(1)
	s.Analysis = Analysis{
		Complete: true,
		Requested: map[ContentKind]int{
			KindBlog:     blogs,
			KindArticle:  articles,
			KindResource: resources,
		},
	}
	return s
}

func saveItem(s *OrchestrationState, kind ContentKind, title string, needsMore bool) *ContentItem {
	it := s.TrackItem(kind, title)
	s.MarkSaved(it, int64(len(s.Items[kind])), "slug-"+title, 100, needsMore)
	return it
}

func toolTurn(names ...string) TurnOutput {
	return TurnOutput{Text: "working on it", ToolNames: names}
}

func textTurn(text string) TurnOutput {
	return TurnOutput{Text: text}
}

func TestRoutePreAnalysis(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := NewState(1)

	// Tool calls before analysis keep the run alive indefinitely.
	for i := 1; i <= 5; i++ {
		if v := r.Route(s, toolTurn("research"), i); v.Stop {
			t.Fatalf("Iteration %d: expected continue before analysis, got stop %s", i, v.Reason)
		}
	}
}

func TestRoutePreAnalysisStall(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := NewState(1)

	for i := 1; i <= 2; i++ {
		if v := r.Route(s, textTurn("let me think"), i); v.Stop {
			t.Fatalf("Iteration %d: stopped too early: %s", i, v.Reason)
		}
	}
	v := r.Route(s, textTurn("still thinking"), 3)
	if !v.Stop || v.Reason != StopStalled {
		t.Errorf("Expected stall stop on third text-only turn, got %+v", v)
	}
}

func TestRouteNoWorkRequested(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(0, 0, 0)

	v := r.Route(s, textTurn("nothing to create"), 2)
	if !v.Stop || v.Reason != StopNoWork {
		t.Errorf("Expected no-work stop, got %+v", v)
	}
}

func TestRouteAllSatisfied(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(2, 0, 0)

	saveItem(s, KindBlog, "First Post", false)
	if v := r.Route(s, toolTurn("save_blog"), 2); v.Stop {
		t.Fatalf("Expected continue with one of two blogs saved, got %s", v.Reason)
	}

	saveItem(s, KindBlog, "Second Post", false)
	v := r.Route(s, toolTurn("save_blog"), 3)
	if !v.Stop || v.Reason != StopAllSaved {
		t.Errorf("Expected all-saved stop, got %+v", v)
	}
}

func TestRouteCountBeatsToolCalls(t *testing.T) {
	// A turn that still carries tool calls stops anyway once counts are met.
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(1, 0, 0)
	saveItem(s, KindBlog, "Done", false)

	v := r.Route(s, toolTurn("check_progress"), 4)
	if !v.Stop || v.Reason != StopAllSaved {
		t.Errorf("Expected all-saved stop despite tool call, got %+v", v)
	}
}

func TestRouteMultiPartBlocksCompletion(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(1, 0, 0)

	it := saveItem(s, KindBlog, "Long Post", true)
	if v := r.Route(s, toolTurn("save_blog"), 2); v.Stop {
		t.Fatalf("Blog awaiting appends should not complete the run, got %s", v.Reason)
	}

	it.NeedsMoreContent = false
	v := r.Route(s, toolTurn("append_to_blog"), 3)
	if !v.Stop || v.Reason != StopAllSaved {
		t.Errorf("Expected all-saved stop after final append, got %+v", v)
	}
}

func TestRouteCompletionPhrase(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(2, 0, 0)
	saveItem(s, KindBlog, "Only One", false)

	v := r.Route(s, textTurn("The TASK IS COMPLETE, nothing else needed."), 3)
	if !v.Stop || v.Reason != StopCompletionSignal {
		t.Errorf("Expected completion-signal stop, got %+v", v)
	}
	if !strings.Contains(v.Detail, "task is complete") {
		t.Errorf("Detail should name the matched phrase, got %q", v.Detail)
	}
}

func TestRouteStallWithWorkOutstanding(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(1, 0, 0)

	if v := r.Route(s, textTurn("hmm"), 1); v.Stop {
		t.Fatalf("First text-only turn should continue, got %s", v.Reason)
	}
	// A tool call resets the streak.
	if v := r.Route(s, toolTurn("research"), 2); v.Stop {
		t.Fatalf("Tool turn should continue, got %s", v.Reason)
	}
	for i := 3; i <= 4; i++ {
		if v := r.Route(s, textTurn("hmm"), i); v.Stop {
			t.Fatalf("Iteration %d: stopped before the stall threshold: %s", i, v.Reason)
		}
	}
	v := r.Route(s, textTurn("hmm"), 5)
	if !v.Stop || v.Reason != StopStalled {
		t.Errorf("Expected stall stop after three consecutive text-only turns, got %+v", v)
	}
}

func TestRouteDefensiveTotalRecheck(t *testing.T) {
	// Totals cover the request even though one kind overshot and another is
	// short: a text-only turn still ends the run.
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(1, 1, 0)
	saveItem(s, KindBlog, "One", false)
	saveItem(s, KindBlog, "Two", false)

	v := r.Route(s, textTurn("moving on"), 4)
	if !v.Stop || v.Reason != StopAllSaved {
		t.Errorf("Expected total-recheck stop, got %+v", v)
	}
}

func TestRouteRunawayOutput(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(2, 0, 0)

	runaway := strings.Repeat("I am now going to save the blog post. ", 80)
	v := r.Route(s, TurnOutput{Text: runaway, ToolNames: []string{"research"}}, 2)
	if !v.Stop || v.Reason != StopRepetitiveOutput {
		t.Errorf("Expected repetitive-output stop even with a tool call, got %+v", v)
	}
}

func TestRouteShortRepetitionTolerated(t *testing.T) {
	r := NewRouter(DefaultRouterConfig())
	s := analyzedState(2, 0, 0)

	// Repetition below the length threshold is not runaway.
	short := strings.Repeat("Saving the blog post now. ", 10)
	if v := r.Route(s, TurnOutput{Text: short, ToolNames: []string{"save_blog"}}, 2); v.Stop {
		t.Errorf("Short repetitive text should not stop the run, got %+v", v)
	}

	// Long but varied output is fine too.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("Section ")
		b.WriteByte(byte('a' + i%26))
		b.WriteString(" covers a different aspect of the topic entirely, number ")
		b.WriteString(strings.Repeat("x", i%7+1))
		b.WriteString(". ")
	}
	if v := r.Route(s, TurnOutput{Text: b.String(), ToolNames: []string{"save_blog"}}, 3); v.Stop {
		t.Errorf("Varied long output should not stop the run, got %+v", v)
	}
}

func TestRouterConfigDefaults(t *testing.T) {
	r := NewRouter(RouterConfig{})
	def := DefaultRouterConfig()

	if r.cfg.MaxTextOnlyTurns != def.MaxTextOnlyTurns {
		t.Errorf("Expected default MaxTextOnlyTurns %d, got %d", def.MaxTextOnlyTurns, r.cfg.MaxTextOnlyTurns)
	}
	if r.cfg.LongOutputThreshold != def.LongOutputThreshold {
		t.Errorf("Expected default LongOutputThreshold %d, got %d", def.LongOutputThreshold, r.cfg.LongOutputThreshold)
	}
	if len(r.cfg.CompletionPhrases) == 0 {
		t.Error("Expected default completion phrases to be filled in")
	}
}
