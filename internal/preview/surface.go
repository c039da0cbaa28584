package preview

import (
	"time"

	"log/slog"

	"mediaproxy/internal/config"
	"mediaproxy/internal/logging"
	"mediaproxy/internal/media/format"
)

// Surface is the stateful monitor: it holds the current source, the
// resolved mode, and the playback element's position. All mutation goes
// through the transition function so the lifecycle stays inspectable.
type Surface struct {
	logger *slog.Logger
	now    func() time.Time

	validationTimeout time.Duration

	state   State
	mode    Mode
	source  Source
	hasSrc  bool
	playing bool
	// position is the playback element's current time in seconds.
	position float64
	// validationStarted marks when the current source began awaiting
	// validation; zero once metadata arrives.
	validationStarted time.Time
}

// NewSurface builds an idle surface. The validation timeout comes from
// configuration; a nil clock defaults to time.Now.
func NewSurface(cfg *config.Config, logger *slog.Logger) *Surface {
	timeout := time.Duration(cfg.Preview.ValidationTimeout) * time.Second
	return &Surface{
		logger:            logging.WithComponent(logger, "preview"),
		now:               time.Now,
		validationTimeout: timeout,
		state:             StateIdle,
		mode:              ModeIdentify,
	}
}

// State returns the current lifecycle state.
func (s *Surface) State() State { return s.state }

// Mode returns the current rendering mode.
func (s *Surface) Mode() Mode { return s.mode }

// Source returns the loaded source; ok is false while idle.
func (s *Surface) Source() (Source, bool) { return s.source, s.hasSrc }

// Playing reports whether the playback element is running.
func (s *Surface) Playing() bool { return s.playing }

// Position returns the playback position in seconds.
func (s *Surface) Position() float64 { return s.position }

// LoadSource replaces the current source. Legal from any state: the old
// playback element is paused and its position dropped synchronously, then
// every mode-derived flag is recomputed from the new source alone.
func (s *Surface) LoadSource(src Source) {
	next, err := Transition(s.state, EventSourceAssigned)
	if err != nil {
		// Source assignment is legal everywhere; this cannot happen.
		return
	}

	s.playing = false
	s.position = 0
	s.source = src
	s.hasSrc = true
	s.state = next
	s.mode = ResolveMode(src)

	if src.Validated {
		s.validationStarted = time.Time{}
	} else {
		s.validationStarted = s.now()
	}

	s.logger.Info("source loaded",
		logging.String(logging.FieldSource, src.Path),
		logging.String("mode", s.mode.String()))
}

// SetMetadata applies validation results for the current source and
// re-resolves the mode. Metadata for a source that was already replaced is
// ignored by the caller keying on path.
func (s *Surface) SetMetadata(container format.Container, codec format.Codec) {
	if !s.hasSrc {
		return
	}
	s.source.Container = container
	s.source.Codec = codec
	s.source.Validated = true
	s.validationStarted = time.Time{}

	previous := s.mode
	s.mode = ResolveMode(s.source)
	if s.mode != previous {
		s.logger.Info("mode re-resolved after validation",
			logging.String("mode", s.mode.String()))
	}
}

// ValidationStalled reports whether the current source has been awaiting
// validation longer than the configured timeout. The surface stays in
// identify mode either way; the flag only signals staleness.
func (s *Surface) ValidationStalled() bool {
	if s.validationStarted.IsZero() || s.validationTimeout <= 0 {
		return false
	}
	return s.now().Sub(s.validationStarted) >= s.validationTimeout
}

// JobStarted moves the surface into the running phase: playback pauses and
// every transport control disables while staying mounted.
func (s *Surface) JobStarted() error {
	next, err := Transition(s.state, EventJobStarted)
	if err != nil {
		return err
	}
	s.playing = false
	s.state = next
	return nil
}

// JobFinished records a terminal job status. Controls re-enable according
// to the mode resolved for the source; the mode itself does not change.
func (s *Surface) JobFinished() error {
	next, err := Transition(s.state, EventJobFinished)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Play starts playback when the play control is enabled. Returns whether
// the request took effect.
func (s *Surface) Play() bool {
	if !ControlEnabled(s.state, s.mode, ControlPlay) {
		return false
	}
	s.playing = true
	return true
}

// Pause stops playback when the pause control is enabled.
func (s *Surface) Pause() bool {
	if !ControlEnabled(s.state, s.mode, ControlPause) {
		return false
	}
	s.playing = false
	return true
}

// Seek moves the playback position when the scrubber is enabled. Negative
// positions clamp to zero.
func (s *Surface) Seek(position float64) bool {
	if !ControlEnabled(s.state, s.mode, ControlScrubber) {
		return false
	}
	if position < 0 {
		position = 0
	}
	s.position = position
	return true
}

// TransportStates returns the current enablement of every transport
// control.
func (s *Surface) TransportStates() map[Control]bool {
	return ControlStates(s.state, s.mode)
}
