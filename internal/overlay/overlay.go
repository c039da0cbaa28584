// Package overlay manages preview overlays: which ones respond to drags in
// each interaction mode, and how preset application negotiates with manual
// edits.
package overlay

import (
	"fmt"
	"strings"
)

// Category classifies an overlay for interaction gating.
type Category int

const (
	CategoryTimecode Category = iota
	CategoryMetadata
	CategoryImage
)

var categoryNames = map[Category]string{
	CategoryTimecode: "timecode",
	CategoryMetadata: "metadata",
	CategoryImage:    "image",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory resolves a category name, case-insensitively. The second
// return value is false for unrecognized names.
func ParseCategory(value string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for category, name := range categoryNames {
		if name == normalized {
			return category, true
		}
	}
	return 0, false
}

// BurnInEligible reports whether the category may be manipulated in burn-in
// mode. Only data overlays that get rendered into delivered media qualify.
func (c Category) BurnInEligible() bool {
	return c == CategoryTimecode || c == CategoryMetadata
}

// InteractionMode selects which overlays respond to drags.
type InteractionMode int

const (
	// ModeView locks every overlay.
	ModeView InteractionMode = iota
	// ModeOverlays makes every overlay draggable.
	ModeOverlays
	// ModeBurnIn restricts dragging to burn-in eligible overlays.
	ModeBurnIn
)

var interactionModeNames = map[InteractionMode]string{
	ModeView:     "view",
	ModeOverlays: "overlays",
	ModeBurnIn:   "burn-in",
}

func (m InteractionMode) String() string {
	if name, ok := interactionModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseInteractionMode resolves a mode name, case-insensitively. The second
// return value is false for unrecognized names.
func ParseInteractionMode(value string) (InteractionMode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for mode, name := range interactionModeNames {
		if name == normalized {
			return mode, true
		}
	}
	return 0, false
}

// Draggable is the interaction gate: a pure function of mode and category.
func Draggable(mode InteractionMode, category Category) bool {
	switch mode {
	case ModeOverlays:
		return true
	case ModeBurnIn:
		return category.BurnInEligible()
	default:
		return false
	}
}

// PositionSource records who last placed an overlay.
type PositionSource int

const (
	// SourcePreset means the position came from a preset (or the initial
	// layout default).
	SourcePreset PositionSource = iota
	// SourceManual means the user dragged the overlay; presets must not
	// silently overwrite it.
	SourceManual
)

// Position is an overlay's placement on the preview canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Overlay is one positioned element on the preview canvas.
type Overlay struct {
	ID             string
	Category       Category
	Position       Position
	PositionSource PositionSource
	Opacity        float64
}
