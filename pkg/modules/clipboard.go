package modules

import (
	"context"
	"sync"

	"github.com/morezero/webview-bridge/pkg/bridge"
	"github.com/morezero/webview-bridge/pkg/capability"
	"github.com/morezero/webview-bridge/pkg/jsonval"
)

// Clipboard exposes read/write access to the shell clipboard. This
// implementation holds the clipboard in memory; a platform build swaps in the
// OS pasteboard behind the same actions.
type Clipboard struct {
	mu      sync.RWMutex
	text    string
	hasText bool
}

var _ capability.Capability = (*Clipboard)(nil)

// NewClipboard creates the clipboard module.
func NewClipboard() *Clipboard { return &Clipboard{} }

func (c *Clipboard) Name() string { return "clipboard" }

func (c *Clipboard) Actions() []string { return []string{"read", "write"} }

func (c *Clipboard) Handle(_ context.Context, action string, payload *jsonval.Value, _ *capability.Invocation) (*jsonval.Value, error) {
	switch action {
	case "read":
		c.mu.RLock()
		text, hasText := c.text, c.hasText
		c.mu.RUnlock()
		return jsonval.Object(map[string]*jsonval.Value{
			"text":    jsonval.String(text),
			"hasText": jsonval.Bool(hasText),
		}), nil
	default: // write
		text, ok := payload.Get("text").AsString()
		if !ok {
			return nil, bridge.InvalidPayload("text must be a string")
		}
		c.mu.Lock()
		c.text = text
		c.hasText = text != ""
		c.mu.Unlock()
		return nil, nil
	}
}
