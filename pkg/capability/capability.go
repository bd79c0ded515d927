// Package capability defines the contract a native feature module satisfies
// to be pluggable into the bridge: a stable name, a fixed action set, and a
// handler. The dispatcher validates the action against the set before the
// handler runs, so implementations may assume every incoming action is one
// they declared.
package capability

import (
	"context"

	"github.com/morezero/webview-bridge/pkg/jsonval"
)

// Capability is one device/platform feature exposed to the web content.
type Capability interface {
	// Name is the stable, lowercase registry key.
	Name() string

	// Actions is the fixed set of action names this module supports.
	Actions() []string

	// Handle executes one pre-validated action. The payload is nil when the
	// caller sent none. A nil result with a nil error is a valid "no data"
	// success. Handlers run concurrently; a module owning mutable state must
	// synchronize it itself.
	Handle(ctx context.Context, action string, payload *jsonval.Value, inv *Invocation) (*jsonval.Value, error)
}

// Invocation carries per-call ambient data from the host into a handler.
// The dispatch core never inspects it.
type Invocation struct {
	// TraceID correlates log lines for one dispatch; assigned by the host.
	TraceID string
	// Platform is the host platform identifier (e.g. "ios", "android").
	Platform string
	// AppVersion is the semantic version of the running shell.
	AppVersion string
	// Features holds the feature flags active for this installation.
	Features []string
}

// HasFeature reports whether the named feature flag is active.
func (inv *Invocation) HasFeature(name string) bool {
	if inv == nil {
		return false
	}
	for _, f := range inv.Features {
		if f == name {
			return true
		}
	}
	return false
}

// ActionSet is a convenience for membership checks over a module's declared
// actions.
type ActionSet map[string]struct{}

// NewActionSet builds an ActionSet from action names.
func NewActionSet(actions ...string) ActionSet {
	set := make(ActionSet, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Contains reports whether action is in the set.
func (s ActionSet) Contains(action string) bool {
	_, ok := s[action]
	return ok
}
