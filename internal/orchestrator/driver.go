package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quillworks/quill/internal/engine"
)

// Driver runs the generation loop: model turn, tool execution, router
// decision, repeat. One Driver instance serves one run.
type Driver struct {
	LLM      engine.LLMClient
	Model    string
	Registry engine.ToolRegistry
	Router   *Router
	Hooks    engine.Hooks

	// MaxIterations is the hard ceiling on model turns. Reaching it is a
	// reported truncation, not a failure.
	MaxIterations int

	ChatOptions engine.ChatOptions

	// Retry overrides the retry configuration. Nil means the defaults; a
	// zero-valued config disables retries entirely.
	Retry *engine.RetryConfig
}

const defaultMaxIterations = 100

// Run executes the loop until the router stops it or the iteration ceiling
// is hit. Tool failures are fed back to the model as structured results and
// never abort the run; only an exhausted LLM call does, and even then the
// returned result reports whatever was already saved.
func (d *Driver) Run(ctx context.Context, systemPrompt, userMessage string, state *OrchestrationState) (*Result, error) {
	start := time.Now()

	maxIter := d.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	router := d.Router
	if router == nil {
		router = NewRouter(DefaultRouterConfig())
	}
	retry := engine.DefaultRetryConfig()
	if d.Retry != nil {
		retry = *d.Retry
	}

	messages := []engine.ChatMessage{
		{Role: engine.RoleSystem, Content: systemPrompt},
		{Role: engine.RoleUser, Content: userMessage},
	}
	schemas := d.Registry.Schemas()

	var totals engine.Usage
	verdict := stop(StopIterationCeiling, fmt.Sprintf("reached %d iterations with work outstanding", maxIter))
	iterations := 0

	for iteration := 1; iteration <= maxIter; iteration++ {
		iterations = iteration
		d.Hooks.OnIterationStart(ctx, iteration)
		d.Hooks.OnBeforeLLM(ctx, messages, schemas)

		resp, err := engine.RetryLLMCall(ctx, retry.LLMPolicy, d.LLM, d.Model, messages, schemas, d.ChatOptions,
			func(attempt int, delay time.Duration, rerr error) {
				d.Hooks.OnRetryAttempt(ctx, attempt, retry.LLMPolicy.MaxRetries, delay, rerr)
			})
		if err != nil {
			d.Hooks.OnRetryExhausted(ctx, err)
			state.RecordError(fmt.Sprintf("llm call failed at iteration %d: %v", iteration, err))
			res := buildResult(state, stop(StopNone, "llm unavailable"), iteration, time.Since(start).Milliseconds())
			res.Success = false
			res.Truncated = true
			return res, fmt.Errorf("llm call failed: %w", err)
		}
		d.Hooks.OnAfterLLM(ctx, resp)
		totals.Add(resp.Usage)

		assistant := resp.Assistant
		assistant.ToolCalls = resp.ToolCalls
		messages = append(messages, assistant)

		// Sequential execution in call order. Each tool validates its own
		// preconditions against state, since siblings in the same turn were
		// issued against the pre-turn snapshot.
		toolNames := make([]string, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			toolNames = append(toolNames, call.Name)
			d.Hooks.OnToolCall(ctx, call)

			result, terr := engine.RetryToolCall(ctx, retry.ToolPolicy, call, d.Registry,
				func(attempt int, delay time.Duration, rerr error) {
					d.Hooks.OnRetryAttempt(ctx, attempt, retry.ToolPolicy.MaxRetries, delay, rerr)
				})
			d.Hooks.OnToolResult(ctx, call, result, terr)
			if terr != nil {
				// Errors are data: the model sees the failure on its next
				// turn and can self-correct.
				result = toolErrorJSON(terr)
				state.RecordError(fmt.Sprintf("tool %s: %v", call.Name, terr))
			}
			messages = append(messages, engine.ChatMessage{
				Role:    engine.RoleTool,
				Name:    call.ID,
				Content: result,
			})
		}

		state.RecordIteration(iteration, toolNames)

		v := router.Route(state, TurnOutput{Text: resp.Assistant.Content, ToolNames: toolNames}, iteration)
		d.Hooks.OnRouteDecision(ctx, iteration, v.Stop, string(v.Reason))
		if v.Stop {
			verdict = v
			break
		}
	}

	d.Hooks.OnDone(ctx, iterations, totals)
	return buildResult(state, verdict, iterations, time.Since(start).Milliseconds()), nil
}

func toolErrorJSON(err error) string {
	b, merr := json.Marshal(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	if merr != nil {
		return `{"success":false,"error":"tool failed"}`
	}
	return string(b)
}
