// Package callwise provides a high-level façade over the conversational
// engine: the activation policy, the callsystem and integration registries,
// the dispatcher and the shared runtime configuration. Most applications
// interact with this package by:
//  1. Creating an Engine via New() (optionally overriding the default
//     in-memory record store)
//  2. Registering callsystems and integrations
//  3. Feeding inbound messages to HandleMessage with a platform transport
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable record store and a structured
// logger.
package callwise

import (
	"context"
	"fmt"

	"github.com/callwise/callwise/callsystem"
	"github.com/callwise/callwise/core"
	"github.com/callwise/callwise/history"
	"github.com/callwise/callwise/integration"
	"github.com/callwise/callwise/logging"
	"github.com/callwise/callwise/model"
	"github.com/callwise/callwise/observability"
	"github.com/callwise/callwise/plugin"
	"github.com/callwise/callwise/transport"
)

// Options configures the Engine instance.
type Options struct {
	// Store holds conversation records and the persisted runtime
	// configuration (defaults to an in-memory implementation).
	Store core.RecordStore

	// Policy decides which messages activate a response.
	Policy callsystem.Policy

	// Caller selects tools; Responder writes replies; ImageModel backs
	// image-capable integrations when set.
	Caller     model.Model
	Responder  model.Model
	ImageModel model.Model

	// DefaultCallsystem is the registry key or package id dispatched when
	// the runtime carries no override.
	DefaultCallsystem string

	// InstructionSet is the responder persona; ToolInstructionSet is the
	// persona used for tool-selection calls.
	InstructionSet     string
	ToolInstructionSet string

	// RequireReleaseDate makes plugin registration reject undated
	// descriptors instead of defaulting their release to now.
	RequireReleaseDate bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Metrics (defaults to a no-op sink if nil)
	Metrics *observability.Metrics
}

// Engine is the high-level façade aggregating registries, dispatcher and
// runtime state.
type Engine struct {
	opts Options

	runtime      *core.RuntimeConfig
	callsystems  *plugin.Registry[callsystem.Callsystem]
	integrations *plugin.Registry[integration.Integration]
	dispatcher   *callsystem.Dispatcher
}

// New creates an Engine with optional overrides. Any unset service is
// initialized with a safe default.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Store:             history.NewInMemoryStore(),
		Policy:            callsystem.Policy{Mode: callsystem.ModeWhitelist},
		DefaultCallsystem: "cs.unified",
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NoOpMetrics()
	}

	callsystems := plugin.NewRegistry[callsystem.Callsystem](func(o *plugin.RegistryOptions) {
		o.Namespace = plugin.NamespaceCallsystem
		o.RequireReleaseDate = opts.RequireReleaseDate
		o.Logger = opts.Logger
	})
	integrations := plugin.NewRegistry[integration.Integration](func(o *plugin.RegistryOptions) {
		o.Namespace = plugin.NamespaceIntegration
		o.RequireReleaseDate = opts.RequireReleaseDate
		o.Logger = opts.Logger
	})

	return &Engine{
		opts:         opts,
		runtime:      core.NewRuntimeConfig(opts.Store, opts.InstructionSet, opts.DefaultCallsystem),
		callsystems:  callsystems,
		integrations: integrations,
		dispatcher:   callsystem.NewDispatcher(callsystems, opts.DefaultCallsystem, opts.Logger, opts.Metrics),
	}
}

// RegisterCallsystems adds callsystem plugins. Errors are logged and
// returned; a failed batch leaves the registry unchanged.
func (e *Engine) RegisterCallsystems(systems ...callsystem.Callsystem) error {
	if err := e.callsystems.Register(systems...); err != nil {
		e.opts.Logger.Error("callsystem registration failed", "error", err.Error())
		return err
	}
	return nil
}

// RegisterIntegrations adds integration plugins. Errors are logged and
// returned; a failed batch leaves the registry unchanged.
func (e *Engine) RegisterIntegrations(integrations ...integration.Integration) error {
	if err := e.integrations.Register(integrations...); err != nil {
		e.opts.Logger.Error("integration registration failed", "error", err.Error())
		return err
	}
	return nil
}

// Start restores the persisted runtime configuration snapshot.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.runtime.Load(ctx); err != nil {
		return fmt.Errorf("load runtime configuration: %w", err)
	}
	e.opts.Logger.Info("engine started",
		"callsystems", e.callsystems.Len(),
		"integrations", e.integrations.Len(),
		"silent", e.runtime.SilentMode())
	return nil
}

// Runtime exposes the live engine settings.
func (e *Engine) Runtime() *core.RuntimeConfig { return e.runtime }

// Callsystems exposes the callsystem registry.
func (e *Engine) Callsystems() *plugin.Registry[callsystem.Callsystem] { return e.callsystems }

// Integrations exposes the integration registry.
func (e *Engine) Integrations() *plugin.Registry[integration.Integration] { return e.integrations }

// Activates reports whether a message would get a response under the
// current policy and runtime state.
func (e *Engine) Activates(msg core.Message) bool {
	return e.opts.Policy.Activates(msg, e.runtime.SilentMode())
}

// HandleMessage runs the full pipeline for one inbound message. The bool
// result reports whether the message activated at all; non-activating
// messages are ignored without error.
func (e *Engine) HandleMessage(ctx context.Context, msg core.Message, tr transport.Transport) (callsystem.ActivationResult, bool, error) {
	if !e.Activates(msg) {
		return callsystem.ActivationResult{}, false, nil
	}

	inv := &callsystem.Invocation{
		Message:            msg,
		Transport:          tr,
		Runtime:            e.runtime,
		Caller:             e.opts.Caller,
		Responder:          e.opts.Responder,
		ImageModel:         e.opts.ImageModel,
		Integrations:       e.latestIntegrations(),
		InstructionSet:     e.opts.InstructionSet,
		ToolInstructionSet: e.opts.ToolInstructionSet,
		Fallback:           e.fallbackCallsystem(),
		Logger:             e.opts.Logger,
		Metrics:            e.opts.Metrics,
	}

	result, err := e.dispatcher.Dispatch(ctx, inv)
	return result, true, err
}

// Forget erases a conversation from every registered callsystem that keeps
// history, leaving only configured persona records.
func (e *Engine) Forget(ctx context.Context, key string) error {
	var firstErr error
	for _, cs := range e.callsystems.Latests() {
		holder, ok := cs.(interface{ Histories() *history.Manager })
		if !ok {
			continue
		}
		if _, err := holder.Histories().RemoveAll(ctx, key, core.AllRoles); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// latestIntegrations resolves the newest version of every registered
// integration package.
func (e *Engine) latestIntegrations() []integration.Integration {
	return e.integrations.Latests()
}

// fallbackCallsystem resolves the legacy pipeline when registered.
func (e *Engine) fallbackCallsystem() callsystem.Callsystem {
	fallback, err := e.callsystems.Latest("cs.legacy")
	if err != nil {
		return nil
	}
	return fallback
}
