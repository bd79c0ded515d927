package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	// SubjectBridge is the request/reply subject the bridge host serves.
	SubjectBridge = "bridge.webview.v1"
	// SubjectDispatched receives an event for every completed dispatch.
	SubjectDispatched = "bridge.dispatched"
)

// BuildDispatchedSubject builds the granular dispatch event subject for a module.
func BuildDispatchedSubject(module string) string {
	safe := strings.ReplaceAll(module, ".", "_")
	return fmt.Sprintf("bridge.dispatched.%s", safe)
}
