package modules

import (
	"context"
	"fmt"

	"github.com/morezero/webview-bridge/pkg/bridge"
	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/jsonval"
	"github.com/morezero/webview-bridge/pkg/registry"
	"github.com/morezero/webview-bridge/pkg/version"
)

// System exposes shell metadata to the web content: app identity, version
// gating, and the set of registered bridge modules.
type System struct {
	appName    string
	appVersion string
	platform   string
	registry   *registry.Registry
}

var _ capability.Capability = (*System)(nil)

// NewSystem creates the system module. The registry reference backs
// listModules; register the system module itself after the others so the
// listing is complete.
func NewSystem(appName, appVersion, platform string, reg *registry.Registry) *System {
	return &System{appName: appName, appVersion: appVersion, platform: platform, registry: reg}
}

func (s *System) Name() string { return "system" }

func (s *System) Actions() []string { return []string{"getInfo", "checkVersion", "listModules"} }

func (s *System) Handle(_ context.Context, action string, payload *jsonval.Value, _ *capability.Invocation) (*jsonval.Value, error) {
	switch action {
	case "getInfo":
		return jsonval.Object(map[string]*jsonval.Value{
			"name":     jsonval.String(s.appName),
			"version":  jsonval.String(s.appVersion),
			"platform": jsonval.String(s.platform),
		}), nil
	case "checkVersion":
		return s.checkVersion(payload)
	default: // listModules
		return s.listModules(), nil
	}
}

// checkVersion evaluates a SemVer constraint from the payload against the
// running shell version, so web content can gate features on the native app
// version.
func (s *System) checkVersion(payload *jsonval.Value) (*jsonval.Value, error) {
	constraint, ok := payload.Get("constraint").AsString()
	if !ok || constraint == "" {
		return nil, bridge.InvalidPayload("constraint must be a non-empty string")
	}

	// A bad shell version is a configuration fault, not a payload fault.
	if !version.IsValid(s.appVersion) {
		return nil, fmt.Errorf("shell version %q is not a valid semantic version", s.appVersion)
	}

	satisfied, err := version.Satisfies(s.appVersion, constraint)
	if err != nil {
		return nil, bridge.InvalidPayload(err.Error())
	}

	return jsonval.Object(map[string]*jsonval.Value{
		"version":    jsonval.String(s.appVersion),
		"constraint": jsonval.String(constraint),
		"satisfied":  jsonval.Bool(satisfied),
	}), nil
}

func (s *System) listModules() *jsonval.Value {
	names := s.registry.Names()
	entries := make([]*jsonval.Value, 0, len(names))
	for _, name := range names {
		mod, ok := s.registry.Lookup(name)
		if !ok {
			continue
		}
		actions := make([]*jsonval.Value, 0, len(mod.Actions()))
		for _, a := range mod.Actions() {
			actions = append(actions, jsonval.String(a))
		}
		entries = append(entries, jsonval.Object(map[string]*jsonval.Value{
			"name":    jsonval.String(name),
			"actions": jsonval.Array(actions...),
		}))
	}
	return jsonval.Object(map[string]*jsonval.Value{
		"modules": jsonval.Array(entries...),
	})
}
