package modules

import (
	"context"
	"fmt"
	"sync"

	"github.com/morezero/webview-bridge/pkg/bridge"
	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/jsonval"
)

// HapticTrigger is the platform hook that actually fires the haptic engine.
// The default logs-only hook keeps the module usable in the dev harness.
type HapticTrigger func(kind, variant string)

// Haptics validates haptic requests from the web content and forwards them to
// the platform trigger. Actions return no data; delivery is fire-and-forget.
type Haptics struct {
	trigger HapticTrigger

	mu   sync.Mutex
	last string
}

var _ capability.Capability = (*Haptics)(nil)

// NewHaptics creates the haptics module. A nil trigger records triggers
// without side effects.
func NewHaptics(trigger HapticTrigger) *Haptics {
	return &Haptics{trigger: trigger}
}

func (h *Haptics) Name() string { return "haptics" }

func (h *Haptics) Actions() []string { return []string{"impact", "notification", "selection"} }

func (h *Haptics) Handle(_ context.Context, action string, payload *jsonval.Value, _ *capability.Invocation) (*jsonval.Value, error) {
	switch action {
	case "impact":
		style := "medium"
		if field := payload.Get("style"); field != nil {
			s, ok := field.AsString()
			if !ok {
				return nil, bridge.InvalidPayload("style must be a string")
			}
			if s != "light" && s != "medium" && s != "heavy" {
				return nil, bridge.InvalidPayload(fmt.Sprintf("unknown impact style %q", s))
			}
			style = s
		}
		h.fire("impact", style)
	case "notification":
		kind, ok := payload.Get("type").AsString()
		if !ok {
			return nil, bridge.InvalidPayload("type must be a string")
		}
		if kind != "success" && kind != "warning" && kind != "error" {
			return nil, bridge.InvalidPayload(fmt.Sprintf("unknown notification type %q", kind))
		}
		h.fire("notification", kind)
	default: // selection
		h.fire("selection", "")
	}
	return nil, nil
}

func (h *Haptics) fire(kind, variant string) {
	h.mu.Lock()
	if variant == "" {
		h.last = kind
	} else {
		h.last = kind + ":" + variant
	}
	h.mu.Unlock()

	if h.trigger != nil {
		h.trigger(kind, variant)
	}
}

// LastTrigger returns the most recent trigger in "kind:variant" form, for
// diagnostics and tests.
func (h *Haptics) LastTrigger() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}
