package api

import (
	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/dropzone"
	"mediaproxy/internal/overlay"
)

// AuditDropRequest replays a host drag-and-drop payload against the drop
// zone, for verifying what a desktop shell actually delivers.
type AuditDropRequest struct {
	Payload  dropzone.Payload `json:"payload"`
	Disabled bool             `json:"disabled,omitempty"`
}

// AuditDropResult pairs one resolved path with its routing decision.
type AuditDropResult struct {
	Path    string               `json:"path"`
	Routing capabilities.Routing `json:"routing"`
}

// AuditDropResponse lists the paths a drop resolved and how each would
// route under the current capability snapshot.
type AuditDropResponse struct {
	Accepted bool              `json:"accepted"`
	Results  []AuditDropResult `json:"results,omitempty"`
}

// AuditOverlayItem seeds one overlay for a board dry run.
type AuditOverlayItem struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Manual   bool    `json:"manual,omitempty"`
	Opacity  float64 `json:"opacity"`
}

// AuditPresetEntry is one preset effect; a nil member means no effect on
// that attribute.
type AuditPresetEntry struct {
	Position *overlay.Position `json:"position,omitempty"`
	Opacity  *float64          `json:"opacity,omitempty"`
}

// AuditPreset names a set of overlay effects, keyed by overlay id.
type AuditPreset struct {
	Name    string                      `json:"name"`
	Entries map[string]AuditPresetEntry `json:"entries"`
}

// AuditOverlayRequest dry-runs a preset application against a freshly
// seeded overlay board. Resolution optionally settles a conflict:
// "keep-manual", "reset-to-preset", or "dismiss".
type AuditOverlayRequest struct {
	Mode       string             `json:"mode,omitempty"`
	Overlays   []AuditOverlayItem `json:"overlays"`
	Preset     AuditPreset        `json:"preset"`
	Resolution string             `json:"resolution,omitempty"`
}

// AuditOverlayView is one overlay's state after the dry run.
type AuditOverlayView struct {
	ID        string  `json:"id"`
	Category  string  `json:"category"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Manual    bool    `json:"manual"`
	Opacity   float64 `json:"opacity"`
	Draggable bool    `json:"draggable"`
}

// AuditOverlayResponse reports how the preset application went and the
// final overlay states.
type AuditOverlayResponse struct {
	Applied   bool               `json:"applied"`
	Conflicts []string           `json:"conflicts,omitempty"`
	Pending   bool               `json:"pending"`
	Overlays  []AuditOverlayView `json:"overlays"`
}
