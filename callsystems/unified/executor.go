package unified

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/callwise/callwise/callsystem"
	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/integration"
)

// CatastrophicFailureContent is fed to the responder when an integration
// paniced or errored without producing a result of its own.
const CatastrophicFailureContent = "Error activating integration: catastrophic failure"

type toolOutcome struct {
	request core.ToolCallRequest
	result  *integration.Result
}

// executeTools runs every selected tool call concurrently. Each execution is
// fault isolated: a panic, validation failure or tool error yields a failed
// result in place, never a missing one, so outcomes always align one to one
// with the requests.
func (c *Callsystem) executeTools(ctx context.Context, inv *callsystem.Invocation, toolInv *integration.Invocation, calls []core.ToolCallRequest) []toolOutcome {
	byName := make(map[string]integration.Integration, len(inv.Integrations))
	for _, in := range inv.Integrations {
		byName[in.Tool().Function.Name] = in
	}

	outcomes := make([]toolOutcome, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call core.ToolCallRequest) {
			defer wg.Done()
			outcomes[i] = toolOutcome{
				request: call,
				result:  c.executeTool(ctx, inv, toolInv, byName, call),
			}
		}(i, call)
	}
	wg.Wait()
	return outcomes
}

func (c *Callsystem) executeTool(ctx context.Context, inv *callsystem.Invocation, toolInv *integration.Invocation, byName map[string]integration.Integration, call core.ToolCallRequest) (result *integration.Result) {
	log := inv.Logger
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("integration panicked", "tool", call.ToolName, "panic", r, "stack", string(debug.Stack()))
			inv.Metrics.RecordToolExecution(call.ToolName, false)
			result = &integration.Result{Success: false, Content: CatastrophicFailureContent}
		}
	}()

	in, ok := byName[call.ToolName]
	if !ok {
		log.Warn("caller selected an unknown integration", "tool", call.ToolName)
		inv.Metrics.RecordToolExecution(call.ToolName, false)
		return &integration.Result{Success: false, Content: "Error activating integration: unknown integration " + call.ToolName}
	}

	args := call.ParsedArguments()
	schema := in.Tool().Function.Parameters
	if err := integration.ValidateArguments(call.ToolName, schema, args); err != nil {
		log.Warn("integration arguments rejected", "tool", call.ToolName, "error", err.Error())
		inv.Metrics.RecordToolExecution(call.ToolName, false)
		return &integration.Result{Success: false, Content: "Error activating integration: " + err.Error()}
	}

	scoped := *toolInv
	scoped.Arguments = args
	res, err := in.Activate(ctx, &scoped)
	dur := time.Since(start)
	if err != nil {
		log.Error("integration failed", "tool", call.ToolName, "duration_ms", dur.Milliseconds(), "error", err.Error())
		inv.Metrics.RecordToolExecution(call.ToolName, false)
		return &integration.Result{Success: false, Content: CatastrophicFailureContent}
	}
	if res == nil {
		res = &integration.Result{Success: false, Content: CatastrophicFailureContent}
	}

	log.Debug("integration completed", "tool", call.ToolName, "duration_ms", dur.Milliseconds(), "success", res.Success)
	inv.Metrics.RecordToolExecution(call.ToolName, res.Success)
	return res
}
