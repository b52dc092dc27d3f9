package orchestrator

import (
	"strings"
)

// StopReason explains why the router terminated a run.
type StopReason string

const (
	StopNone             StopReason = ""
	StopNoWork           StopReason = "no_work_requested"
	StopAllSaved         StopReason = "all_work_satisfied"
	StopCompletionSignal StopReason = "completion_signal"
	StopStalled          StopReason = "stalled"
	StopRepetitiveOutput StopReason = "repetitive_output"
	StopIterationCeiling StopReason = "iteration_ceiling"
)

// Verdict is one routing decision.
type Verdict struct {
	Stop   bool
	Reason StopReason
	Detail string
}

func continueRun() Verdict { return Verdict{} }

func stop(reason StopReason, detail string) Verdict {
	return Verdict{Stop: true, Reason: reason, Detail: detail}
}

// RouterConfig holds the heuristic thresholds. The stall and repetition
// limits were tuned empirically; keep them settable rather than baked in.
type RouterConfig struct {
	// MaxTextOnlyTurns is the number of consecutive turns without a tool
	// call tolerated before the run is declared stalled.
	MaxTextOnlyTurns int

	// RepeatPhraseLimit is the number of times a stock phrase may recur in
	// a single long output before the run is declared runaway.
	RepeatPhraseLimit int

	// LongOutputThreshold is the minimum output length, in characters, at
	// which repetition detection applies.
	LongOutputThreshold int

	// CompletionPhrases are substrings that, on a text-only turn, are read
	// as the model declaring itself done.
	CompletionPhrases []string
}

// DefaultRouterConfig returns the thresholds used in production.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		MaxTextOnlyTurns:    3,
		RepeatPhraseLimit:   5,
		LongOutputThreshold: 2000,
		CompletionPhrases: []string{
			"task is complete",
			"task has been completed",
			"all requested content has been",
			"request has been fulfilled",
			"already exist",
			"nothing further to do",
			"nothing more to do",
		},
	}
}

// Router is the completion oracle for a run. It is invoked after every
// model turn and is the only authority allowed to terminate the loop: the
// model's own claims of being done are treated as hints at best.
//
// The router is deterministic and never errors. All of its inputs are
// observable state: item counts, flags, and the literal text of the last
// turn.
type Router struct {
	cfg RouterConfig

	// textOnlyStreak counts consecutive turns with no tool call.
	textOnlyStreak int
}

// NewRouter builds a router, filling unset config fields with defaults.
func NewRouter(cfg RouterConfig) *Router {
	def := DefaultRouterConfig()
	if cfg.MaxTextOnlyTurns <= 0 {
		cfg.MaxTextOnlyTurns = def.MaxTextOnlyTurns
	}
	if cfg.RepeatPhraseLimit <= 0 {
		cfg.RepeatPhraseLimit = def.RepeatPhraseLimit
	}
	if cfg.LongOutputThreshold <= 0 {
		cfg.LongOutputThreshold = def.LongOutputThreshold
	}
	if len(cfg.CompletionPhrases) == 0 {
		cfg.CompletionPhrases = def.CompletionPhrases
	}
	return &Router{cfg: cfg}
}

// TurnOutput is what the router sees of the last model turn.
type TurnOutput struct {
	Text      string
	ToolNames []string
}

func (t TurnOutput) hadToolCall() bool { return len(t.ToolNames) > 0 }

// Route decides whether the run continues. Checks short-circuit in order:
//
//  1. Analysis not yet complete: continue, the model must call
//     analyze_request before anything else. A completed analysis that
//     requested nothing degenerates to an immediate stop.
//  2. Every kind satisfied: stop. Count-based completion always wins over
//     text heuristics.
//  3. Runaway output: a long response repeating the same phrase is stopped
//     regardless of remaining work.
//  4. Text-only turn heuristics: defensive total recheck, completion-phrase
//     match, then the consecutive text-only-turn counter.
//  5. Otherwise continue.
func (r *Router) Route(state *OrchestrationState, turn TurnOutput, iteration int) Verdict {
	if !state.Analysis.Complete {
		// Before analysis nothing counts as work, but a model that only
		// talks still has to hit the stall valve eventually.
		if turn.hadToolCall() {
			r.textOnlyStreak = 0
			return continueRun()
		}
		r.textOnlyStreak++
		if r.textOnlyStreak >= r.cfg.MaxTextOnlyTurns {
			return stop(StopStalled, "no analysis after repeated text-only turns")
		}
		return continueRun()
	}

	if state.TotalRequested() == 0 {
		return stop(StopNoWork, "analysis requested zero items")
	}

	if state.AllSatisfied() {
		return stop(StopAllSaved, "all requested counts reached")
	}

	if r.isRunaway(turn.Text) {
		return stop(StopRepetitiveOutput, "repetitive long output")
	}

	if turn.hadToolCall() {
		r.textOnlyStreak = 0
		return continueRun()
	}

	// Text-only turn with outstanding work.
	if state.TotalSaved() >= state.TotalRequested() {
		return stop(StopAllSaved, "total saved covers total requested")
	}
	if phrase := r.matchCompletionPhrase(turn.Text); phrase != "" {
		return stop(StopCompletionSignal, "model signaled completion: "+phrase)
	}
	r.textOnlyStreak++
	if r.textOnlyStreak >= r.cfg.MaxTextOnlyTurns {
		return stop(StopStalled, "consecutive text-only turns with unsaved work")
	}
	return continueRun()
}

func (r *Router) matchCompletionPhrase(text string) string {
	lower := strings.ToLower(text)
	for _, p := range r.cfg.CompletionPhrases {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

// isRunaway detects a model caught in a degenerate loop: long output built
// from the same phrase over and over. Sentences of the output are bucketed
// after normalization and any bucket past the limit trips the check.
func (r *Router) isRunaway(text string) bool {
	if len(text) < r.cfg.LongOutputThreshold {
		return false
	}
	counts := map[string]int{}
	for _, raw := range strings.FieldsFunc(text, func(c rune) bool {
		return c == '.' || c == '!' || c == '?' || c == '\n'
	}) {
		s := strings.ToLower(strings.TrimSpace(raw))
		if len(s) < 12 {
			continue
		}
		counts[s]++
		if counts[s] > r.cfg.RepeatPhraseLimit {
			return true
		}
	}
	return false
}
