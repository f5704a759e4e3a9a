package domain

// EventKind names a progress event on a scan's broadcast room.
type EventKind string

const (
	EventProgress          EventKind = "scan:progress"
	EventScreenshotLoading EventKind = "scan:screenshot_loading"
	EventScreenshot        EventKind = "scan:screenshot"
	EventCompleted         EventKind = "scan:completed"
	EventFailed            EventKind = "scan:failed"
)

// Terminal reports whether the kind ends a scan's event stream.
func (k EventKind) Terminal() bool {
	return k == EventCompleted || k == EventFailed
}

// ProgressEvent is a transient broadcast payload. It is delivered to
// whichever subscribers are members of the scan's room at emission time and
// is never persisted.
type ProgressEvent struct {
	ScanID  string      `json:"scan_id"`
	Kind    EventKind   `json:"kind"`
	Percent int         `json:"percent,omitempty"`
	Message string      `json:"message,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}
