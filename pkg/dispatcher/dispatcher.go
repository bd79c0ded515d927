// Package dispatcher routes bridge requests to registered capability modules
// and converts every outcome, including handler panics and malformed input,
// into a well-formed Response. No input makes Dispatch fail to return.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morezero/webview-bridge/pkg/bridge"
	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/events"
	"github.com/morezero/webview-bridge/pkg/jsonval"
	"github.com/morezero/webview-bridge/pkg/registry"
)

const logPrefix = "dispatcher:dispatch"

// Dispatcher routes requests from the web content to capability modules.
// It is stateless per call and safe for concurrent use; the registry is the
// only shared state.
type Dispatcher struct {
	registry  *registry.Registry
	publisher events.EventPublisher
}

// NewDispatcher creates a new Dispatcher. A nil publisher disables dispatch
// events.
func NewDispatcher(reg *registry.Registry, pub events.EventPublisher) *Dispatcher {
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}
	return &Dispatcher{registry: reg, publisher: pub}
}

// Dispatch validates and executes one request and returns its Response. The
// validation order is fixed: module lookup, then action check, then handler
// invocation. The handler is never invoked for an unknown action.
func (d *Dispatcher) Dispatch(ctx context.Context, req *bridge.Request, inv *capability.Invocation) *bridge.Response {
	slog.Debug(fmt.Sprintf("%s - module=%s action=%s id=%s", logPrefix, req.Module, req.Action, req.ID))
	started := time.Now()

	mod, ok := d.registry.Lookup(req.Module)
	if !ok {
		return d.finish(ctx, req, started, bridge.ErrorResponse(req.ID, bridge.UnknownModule(req.Module)))
	}

	if !capability.NewActionSet(mod.Actions()...).Contains(req.Action) {
		return d.finish(ctx, req, started, bridge.ErrorResponse(req.ID, bridge.UnknownAction(req.Action)))
	}

	result, err := invoke(ctx, mod, req.Action, req.Payload, inv)
	if err != nil {
		return d.finish(ctx, req, started, bridge.ErrorResponse(req.ID, classify(err)))
	}
	return d.finish(ctx, req, started, bridge.SuccessResponse(req.ID, result))
}

// DispatchRaw is the raw-text entry point: JSON request text in, JSON
// response text out. Malformed input yields an invalid-message-format
// Response with a best-effort recovered id, never an error.
func (d *Dispatcher) DispatchRaw(ctx context.Context, raw []byte, inv *capability.Invocation) []byte {
	var resp *bridge.Response

	req, perr := bridge.ParseRequest(raw)
	if perr != nil {
		// Malformed messages produce a dispatch event like any other
		// outcome; module and action stay empty.
		req = &bridge.Request{ID: bridge.RecoverID(raw)}
		resp = d.finish(ctx, req, time.Now(), bridge.ErrorResponse(req.ID, perr))
	} else {
		resp = d.Dispatch(ctx, req, inv)
	}

	data, err := resp.Encode()
	if err != nil {
		// Response data produced by a module failed to serialize; report that
		// instead of dropping the reply.
		slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
		fallback := bridge.ErrorResponse(resp.ID, bridge.ModuleError(err))
		data, _ = fallback.Encode()
	}
	return data
}

// invoke runs the handler with panic containment. A panicking handler is
// reported as a plain error and classified like any other module failure.
func invoke(ctx context.Context, mod capability.Capability, action string, payload *jsonval.Value, inv *capability.Invocation) (result *jsonval.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("%s - handler panic in %s.%s: %v", logPrefix, mod.Name(), action, r))
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return mod.Handle(ctx, action, payload, inv)
}

// classify maps a handler failure onto the closed dispatch error set:
// structured bridge errors pass through with their own message, everything
// else is wrapped as a generic module error.
func classify(err error) *bridge.Error {
	var bErr *bridge.Error
	if errors.As(err, &bErr) {
		return bErr
	}
	return bridge.ModuleError(err)
}

// finish publishes the dispatch event and returns the response unchanged.
// Publisher failures are logged, not surfaced; the caller's response does not
// depend on observability.
func (d *Dispatcher) finish(ctx context.Context, req *bridge.Request, started time.Time, resp *bridge.Response) *bridge.Response {
	event := &events.DispatchedEvent{
		RequestID:  req.ID,
		Module:     req.Module,
		Action:     req.Action,
		Success:    resp.Success,
		Error:      resp.Error,
		DurationMs: time.Since(started).Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := d.publisher.PublishDispatched(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to publish dispatch event: %v", logPrefix, err))
	}
	return resp
}
