package modules

import (
	"context"

	"github.com/google/uuid"

	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/jsonval"
)

// Device exposes device identity to the web content. The installation id is
// stable for the lifetime of the module instance; the host is expected to
// persist it across restarts and pass it back in.
type Device struct {
	platform  string
	model     string
	locale    string
	installID string
}

var _ capability.Capability = (*Device)(nil)

// NewDevice creates the device module. An empty installID gets a fresh UUID.
func NewDevice(platform, model, locale, installID string) *Device {
	if installID == "" {
		installID = uuid.NewString()
	}
	return &Device{platform: platform, model: model, locale: locale, installID: installID}
}

func (d *Device) Name() string { return "device" }

func (d *Device) Actions() []string { return []string{"getInfo", "installationId", "generateId"} }

func (d *Device) Handle(_ context.Context, action string, _ *jsonval.Value, _ *capability.Invocation) (*jsonval.Value, error) {
	switch action {
	case "getInfo":
		return jsonval.Object(map[string]*jsonval.Value{
			"platform": jsonval.String(d.platform),
			"model":    jsonval.String(d.model),
			"locale":   jsonval.String(d.locale),
		}), nil
	case "installationId":
		return jsonval.Object(map[string]*jsonval.Value{
			"id": jsonval.String(d.installID),
		}), nil
	default: // generateId
		return jsonval.Object(map[string]*jsonval.Value{
			"id": jsonval.String(uuid.NewString()),
		}), nil
	}
}
