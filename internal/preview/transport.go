package preview

// Control identifies one transport control. Controls are always mounted;
// state changes toggle only their enablement, never their presence.
type Control string

const (
	ControlPlay        Control = "play"
	ControlPause       Control = "pause"
	ControlStepBack    Control = "step-back"
	ControlStepForward Control = "step-forward"
	ControlJumpBack    Control = "jump-back"
	ControlJumpForward Control = "jump-forward"
	ControlScrubber    Control = "scrubber"
	ControlPrevClip    Control = "prev-clip"
	ControlNextClip    Control = "next-clip"
)

// Controls lists every transport control in display order.
func Controls() []Control {
	return []Control{
		ControlPlay,
		ControlPause,
		ControlStepBack,
		ControlStepForward,
		ControlJumpBack,
		ControlJumpForward,
		ControlScrubber,
		ControlPrevClip,
		ControlNextClip,
	}
}

// playbackControls are the controls that require a live playback element.
// Clip navigation works in either mode since it only swaps the source.
var playbackControls = map[Control]struct{}{
	ControlPlay:        {},
	ControlPause:       {},
	ControlStepBack:    {},
	ControlStepForward: {},
	ControlJumpBack:    {},
	ControlJumpForward: {},
	ControlScrubber:    {},
}

// ControlEnabled is the single lookup deciding whether a control is
// interactive. A running job disables everything; otherwise playback
// controls need playback mode with a loaded source, and clip navigation
// needs only a loaded source.
func ControlEnabled(state State, mode Mode, control Control) bool {
	switch state {
	case StateIdle, StateJobRunning:
		return false
	case StateSourceLoaded, StateJobComplete:
		if _, needsPlayback := playbackControls[control]; needsPlayback {
			return mode == ModePlayback
		}
		return true
	default:
		return false
	}
}

// ControlStates returns the enablement of every control for the given
// state and mode. All controls appear in the result regardless of
// enablement.
func ControlStates(state State, mode Mode) map[Control]bool {
	states := make(map[Control]bool, len(playbackControls)+2)
	for _, control := range Controls() {
		states[control] = ControlEnabled(state, mode, control)
	}
	return states
}
