// Package protection is the client-side half of the content-protection
// layer: it classifies suspicious browser-level interactions, reports them to
// the backend and reacts to warning/blocked outcomes.
package protection

import "strings"

// Kind mirrors the server's closed set of violation types.
type Kind string

const (
	KindCopyPaste      Kind = "COPY_PASTE"
	KindScreenshot     Kind = "SCREENSHOT"
	KindContextMenu    Kind = "CONTEXT_MENU"
	KindDeveloperTools Kind = "DEVELOPER_TOOLS"
)

// Description returns the human-readable text reported with a kind. Unknown
// kinds fall back to a generic unauthorized-activity notice.
func (k Kind) Description() string {
	switch k {
	case KindCopyPaste:
		return "Copy/paste attempt detected on protected content"
	case KindScreenshot:
		return "Screenshot or print attempt detected"
	case KindContextMenu:
		return "Context menu access attempt detected"
	case KindDeveloperTools:
		return "Developer tools access attempt detected"
	default:
		return "Unauthorized activity detected"
	}
}

// EventType names the UI hook an InputEvent came from.
type EventType int

const (
	EventKeyDown EventType = iota
	EventContextMenu
	EventCopy
	EventCut
	EventPaste
	EventPrint
)

// InputEvent is a normalized browser interaction. Key holds the key name as
// reported by the UI layer ("c", "F12", "PrintScreen", ...).
type InputEvent struct {
	Type  EventType
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Report is a classified violation ready for submission.
type Report struct {
	Kind        Kind
	Description string
}

// Classify maps an interaction to a violation report. The second return is
// false when the interaction is not a protected one (e.g. an ordinary key
// press) and nothing should be reported.
func Classify(ev InputEvent) (Report, bool) {
	switch ev.Type {
	case EventContextMenu:
		return reportOf(KindContextMenu), true
	case EventCopy, EventCut, EventPaste:
		return reportOf(KindCopyPaste), true
	case EventPrint:
		return reportOf(KindScreenshot), true
	case EventKeyDown:
		return classifyKey(ev)
	}
	return Report{}, false
}

func classifyKey(ev InputEvent) (Report, bool) {
	key := strings.ToLower(ev.Key)
	mod := ev.Ctrl || ev.Meta

	switch {
	case key == "printscreen":
		return reportOf(KindScreenshot), true
	case ev.Meta && ev.Shift && (key == "3" || key == "4" || key == "5" || key == "s"):
		// macOS / Windows screenshot hot-keys
		return reportOf(KindScreenshot), true
	case key == "f12":
		return reportOf(KindDeveloperTools), true
	case mod && ev.Shift && (key == "i" || key == "j" || key == "c"):
		return reportOf(KindDeveloperTools), true
	case mod && key == "u":
		// view page source
		return reportOf(KindDeveloperTools), true
	case mod && key == "p":
		return reportOf(KindScreenshot), true
	case mod && (key == "c" || key == "x" || key == "v"):
		return reportOf(KindCopyPaste), true
	}
	return Report{}, false
}

func reportOf(kind Kind) Report {
	return Report{Kind: kind, Description: kind.Description()}
}
