package recorder

import (
	"time"

	"PriceBoard/internal/model"
)

// Render triggers.
const (
	TriggerCommand = "command"
	TriggerDigest  = "digest"
	TriggerCLI     = "cli"
)

// RenderEvent holds one render attempt. Snapshot is nil when the render failed.
type RenderEvent struct {
	Snapshot  *model.Snapshot
	Selection model.Selection
	ChatID    string
	Trigger   string
	Err       error
}

// RenderSummary is one row of render history.
type RenderSummary struct {
	ID        string
	Timestamp time.Time
	Trigger   string
	Symbols   []string
	Period    model.Period
	Mode      model.ViewMode
	Rows      int
	Cols      int
	Missing   []string
	Error     string
}

// Recorder persists render history for analysis.
type Recorder interface {
	RecordRender(evt *RenderEvent) error
	History(chatID string, limit int) ([]RenderSummary, error)
	Close() error
}
