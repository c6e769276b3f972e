package progress

import "time"

// Stage identifies which generation stage is active.
type Stage string

const (
	StageOutline  Stage = "outline"
	StagePart     Stage = "part"
	StageRevision Stage = "revision"
	StageVisual   Stage = "visual"
	StageComplete Stage = "complete"
)

// Event carries progress information from the workflow to the renderer.
type Event struct {
	Stage     Stage
	Message   string
	Percent   float64 // 0.0–1.0
	PartNum   int
	PartTotal int
	Elapsed   time.Duration
	Error     error
	// OutputFile is set on StageComplete when a script file was written.
	OutputFile string
	// WordCount is the approximate script word count, set on StageComplete.
	WordCount int
}

// Callback is the function signature for progress event handlers.
type Callback func(Event)

// NopCallback is a no-op progress callback for tests and silent mode.
func NopCallback(Event) {}

// NewEvent creates an Event with common fields populated.
func NewEvent(stage Stage, msg string, pct float64, start time.Time) Event {
	return Event{
		Stage:   stage,
		Message: msg,
		Percent: pct,
		Elapsed: time.Since(start),
	}
}
