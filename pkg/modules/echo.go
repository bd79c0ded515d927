// Package modules contains the capability modules shipped with the bridge:
// system, device, haptics, clipboard, storage, and the echo module used by
// tests and the dev harness. Each module owns its internal state; the
// dispatcher may invoke the same module concurrently.
package modules

import (
	"context"

	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/jsonval"
)

// Echo returns its payload unchanged. Handy for connectivity checks from the
// web content and as a known-good module in tests.
type Echo struct{}

var _ capability.Capability = (*Echo)(nil)

// NewEcho creates the echo module.
func NewEcho() *Echo { return &Echo{} }

func (e *Echo) Name() string { return "echo" }

func (e *Echo) Actions() []string { return []string{"echo", "getInfo"} }

func (e *Echo) Handle(_ context.Context, action string, payload *jsonval.Value, _ *capability.Invocation) (*jsonval.Value, error) {
	switch action {
	case "getInfo":
		actions := make([]*jsonval.Value, 0, len(e.Actions()))
		for _, a := range e.Actions() {
			actions = append(actions, jsonval.String(a))
		}
		return jsonval.Object(map[string]*jsonval.Value{
			"module":  jsonval.String(e.Name()),
			"actions": jsonval.Array(actions...),
		}), nil
	default: // echo
		return payload, nil
	}
}
