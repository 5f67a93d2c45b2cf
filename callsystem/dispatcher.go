package callsystem

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/callwise/callwise/logging"
	"github.com/callwise/callwise/observability"
	"github.com/callwise/callwise/plugin"
	"github.com/callwise/callwise/transport"
)

// NoCallsystemMessage is the visible warning when no callsystem resolves.
const NoCallsystemMessage = "⚠️ No callsystem is available to handle this message. Check the engine configuration."

// Dispatcher resolves the active callsystem and runs it with fault
// isolation: a panicking or failing callsystem never takes the engine down.
type Dispatcher struct {
	registry   *plugin.Registry[Callsystem]
	defaultKey string
	logger     logging.Logger
	metrics    *observability.Metrics
}

// NewDispatcher builds a dispatcher over a callsystem registry. defaultKey
// is a registry key ("cs.unified-latest") or a bare package id.
func NewDispatcher(registry *plugin.Registry[Callsystem], defaultKey string, logger logging.Logger, metrics *observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if metrics == nil {
		metrics = observability.NoOpMetrics()
	}
	return &Dispatcher{registry: registry, defaultKey: defaultKey, logger: logger, metrics: metrics}
}

// resolve accepts either a full registry key or a bare package id, which is
// treated as a request for the latest version.
func (d *Dispatcher) resolve(key string) (Callsystem, error) {
	cs, err := d.registry.Resolve(key)
	if err == nil {
		return cs, nil
	}
	if latest, lerr := d.registry.Latest(key); lerr == nil {
		return latest, nil
	}
	return cs, err
}

// Dispatch runs the configured callsystem for an activated message. A
// runtime callsystem override takes precedence over the dispatcher default.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *Invocation) (result ActivationResult, err error) {
	key := d.defaultKey
	if inv.Runtime != nil {
		if override := inv.Runtime.Callsystem(); override != "" {
			key = override
		}
	}

	cs, err := d.resolve(key)
	if err != nil {
		d.logger.Error("no callsystem resolved", "key", key, "error", err.Error())
		d.metrics.RecordActivation(key, "unresolved")
		d.metrics.RecordError("dispatcher", "unresolved")
		if inv.Transport != nil {
			if _, rerr := inv.Transport.Reply(ctx, transport.OutboundMessage{Content: NoCallsystemMessage}); rerr != nil {
				d.logger.Error("failed to deliver configuration warning", "error", rerr.Error())
			}
		}
		return ActivationResult{Success: false, Summary: "no callsystem resolved"}, err
	}

	desc := cs.Descriptor()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("callsystem activation panicked",
				"callsystem", desc.Key(), "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			d.metrics.RecordActivation(desc.PackageID, "panic")
			d.metrics.RecordError("dispatcher", "panic")
			result = ActivationResult{Success: false, Summary: "callsystem panicked"}
			err = fmt.Errorf("callsystem %s panicked: %v", desc.Key(), r)
		}
	}()

	result, err = cs.Activate(ctx, inv)
	if err != nil {
		d.logger.Error("callsystem activation failed", "callsystem", desc.Key(), "error", err.Error())
		d.metrics.RecordActivation(desc.PackageID, "error")
		d.metrics.RecordError("dispatcher", "activation")
		return result, err
	}

	status := "success"
	if !result.Success {
		status = "degraded"
	}
	d.metrics.RecordActivation(desc.PackageID, status)
	d.logger.Debug("callsystem activation finished", "callsystem", desc.Key(), "summary", result.Summary)
	return result, nil
}
