package preview

import (
	"fmt"

	"mediaproxy/internal/media/format"
)

// State names a monitor surface lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateSourceLoaded
	StateJobRunning
	StateJobComplete
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateSourceLoaded: "source_loaded",
	StateJobRunning:   "job_running",
	StateJobComplete:  "job_complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mode is the rendering mode chosen for a loaded source.
type Mode int

const (
	// ModeIdentify renders source identity only: filename, format badges,
	// validation status. Used whenever honest playback is impossible.
	ModeIdentify Mode = iota
	// ModePlayback renders a native playback element with live transport.
	ModePlayback
)

func (m Mode) String() string {
	if m == ModePlayback {
		return "playback"
	}
	return "identify"
}

// Event triggers a state transition.
type Event int

const (
	// EventSourceAssigned fires when a new source replaces the current one.
	EventSourceAssigned Event = iota
	// EventJobStarted fires when a delivery job begins for the source.
	EventJobStarted
	// EventJobFinished fires on any terminal job status.
	EventJobFinished
)

var eventNames = map[Event]string{
	EventSourceAssigned: "source_assigned",
	EventJobStarted:     "job_started",
	EventJobFinished:    "job_finished",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrInvalidTransition reports an event that is not legal in the current
// state.
type ErrInvalidTransition struct {
	State State
	Event Event
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("event %s is not valid in state %s", e.Event, e.State)
}

// Transition is the single transition function for the surface state
// machine. Source assignment is legal from every state; job events are
// bound to their phase.
func Transition(current State, event Event) (State, error) {
	switch event {
	case EventSourceAssigned:
		return StateSourceLoaded, nil
	case EventJobStarted:
		if current == StateSourceLoaded || current == StateJobComplete {
			return StateJobRunning, nil
		}
	case EventJobFinished:
		if current == StateJobRunning {
			return StateJobComplete, nil
		}
	}
	return current, &ErrInvalidTransition{State: current, Event: event}
}

// Source is a file reference under preview. Container and codec stay
// unknown until an external validation pass fills them in.
type Source struct {
	Path      string
	Container format.Container
	Codec     format.Codec
	// Validated reports whether format metadata has been populated. Until
	// then the surface treats the source as awaiting validation.
	Validated bool
	// HasLocalPath reports whether the path is directly readable for
	// playback. Sources referenced through a remote picker may lack one.
	HasLocalPath bool
}

// ResolveMode decides the rendering mode for a source. It is a pure
// function: no local path, an unsupported container, or an unsupported
// codec each force identify mode; only a fully supported combination earns
// playback. Unvalidated metadata reads as unknown and therefore identify.
func ResolveMode(src Source) Mode {
	if !src.HasLocalPath {
		return ModeIdentify
	}
	if !src.Validated {
		return ModeIdentify
	}
	if !format.PlaybackSupported(src.Container, src.Codec) {
		return ModeIdentify
	}
	return ModePlayback
}
