package overlay

import (
	"fmt"
	"sort"

	"log/slog"

	"mediaproxy/internal/logging"
)

// PresetEntry is a preset's effect on one overlay.
type PresetEntry struct {
	Position Position
	// HasPosition distinguishes "place here" from opacity-only entries.
	HasPosition bool
	Opacity     float64
	HasOpacity  bool
}

// Preset names a set of overlay effects applied together.
type Preset struct {
	Name    string
	Entries map[string]PresetEntry
}

// Board owns the overlays on the preview canvas and the active interaction
// mode. Mode switches toggle interactivity only; positions never move as a
// side effect of a mode change.
type Board struct {
	logger   *slog.Logger
	mode     InteractionMode
	overlays map[string]*Overlay
	order    []string
	pending  *Preset
}

// NewBoard builds a board in view mode with the given overlays.
func NewBoard(logger *slog.Logger, overlays ...Overlay) *Board {
	board := &Board{
		logger:   logging.WithComponent(logger, "overlay"),
		mode:     ModeView,
		overlays: make(map[string]*Overlay, len(overlays)),
	}
	for i := range overlays {
		o := overlays[i]
		board.overlays[o.ID] = &o
		board.order = append(board.order, o.ID)
	}
	return board
}

// SetMode switches the interaction mode.
func (b *Board) SetMode(mode InteractionMode) {
	b.mode = mode
}

// Mode returns the active interaction mode.
func (b *Board) Mode() InteractionMode {
	return b.mode
}

// Get returns a copy of the overlay with the given id.
func (b *Board) Get(id string) (Overlay, bool) {
	o, ok := b.overlays[id]
	if !ok {
		return Overlay{}, false
	}
	return *o, true
}

// Overlays returns copies of all overlays in insertion order.
func (b *Board) Overlays() []Overlay {
	result := make([]Overlay, 0, len(b.order))
	for _, id := range b.order {
		result = append(result, *b.overlays[id])
	}
	return result
}

// Draggable reports whether the overlay responds to drags in the current
// mode.
func (b *Board) Draggable(id string) bool {
	o, ok := b.overlays[id]
	if !ok {
		return false
	}
	return Draggable(b.mode, o.Category)
}

// Drag moves an overlay and marks its position as manual. A drag on a
// locked overlay is rejected and the position is untouched.
func (b *Board) Drag(id string, to Position) bool {
	o, ok := b.overlays[id]
	if !ok || !Draggable(b.mode, o.Category) {
		return false
	}
	o.Position = to
	o.PositionSource = SourceManual
	return true
}

// ApplyPreset applies a preset's effects. When any overlay the preset would
// reposition carries a manual position, the position writes are suspended
// and the preset parks as a pending conflict: the caller must resolve it
// with KeepManual or ResetToPreset (or Dismiss, which keeps manual). With
// no conflict the preset applies immediately.
func (b *Board) ApplyPreset(preset Preset) (applied bool, conflicts []string) {
	for id, entry := range preset.Entries {
		if !entry.HasPosition {
			continue
		}
		if o, ok := b.overlays[id]; ok && o.PositionSource == SourceManual {
			conflicts = append(conflicts, id)
		}
	}

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		b.pending = &preset
		b.logger.Info("preset apply suspended on manual positions",
			logging.String("preset", preset.Name),
			logging.Int("conflicts", len(conflicts)))
		return false, conflicts
	}

	b.apply(preset, true)
	return true, nil
}

// PendingConflict returns the preset waiting on a conflict decision.
func (b *Board) PendingConflict() (Preset, bool) {
	if b.pending == nil {
		return Preset{}, false
	}
	return *b.pending, true
}

// KeepManual resolves a pending conflict by keeping manual positions: the
// preset's position writes are aborted while its non-position effects still
// apply.
func (b *Board) KeepManual() error {
	if b.pending == nil {
		return fmt.Errorf("no pending preset conflict")
	}
	b.apply(*b.pending, false)
	b.pending = nil
	return nil
}

// ResetToPreset resolves a pending conflict by applying the preset in full
// and clearing the manual flags it overrode.
func (b *Board) ResetToPreset() error {
	if b.pending == nil {
		return fmt.Errorf("no pending preset conflict")
	}
	b.apply(*b.pending, true)
	b.pending = nil
	return nil
}

// Dismiss abandons the pending conflict prompt. Equivalent to KeepManual.
func (b *Board) Dismiss() {
	if b.pending == nil {
		return
	}
	_ = b.KeepManual()
}

func (b *Board) apply(preset Preset, writePositions bool) {
	for id, entry := range preset.Entries {
		o, ok := b.overlays[id]
		if !ok {
			continue
		}
		if entry.HasOpacity {
			o.Opacity = entry.Opacity
		}
		if !entry.HasPosition {
			continue
		}
		if writePositions {
			o.Position = entry.Position
			o.PositionSource = SourcePreset
		}
	}
}
