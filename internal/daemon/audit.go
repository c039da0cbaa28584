package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mediaproxy/internal/api"
	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/dropzone"
	"mediaproxy/internal/overlay"
)

// handleAuditDrop replays a drag-and-drop payload through a drop zone and
// reports where each resolved path would route.
func (s *apiServer) handleAuditDrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.AuditDropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	zone := dropzone.NewZone(s.logger, nil)
	zone.SetDisabled(req.Disabled)
	paths := zone.Drop(req.Payload)

	resp := api.AuditDropResponse{Accepted: len(paths) > 0}
	if len(paths) > 0 {
		snapshot := s.daemon.Capabilities(r.Context())
		for _, path := range paths {
			resp.Results = append(resp.Results, api.AuditDropResult{
				Path:    path,
				Routing: capabilities.CheckFileRouting(&snapshot, path),
			})
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleAuditOverlay seeds a board from the request, applies the preset,
// and reports the resulting overlay states.
func (s *apiServer) handleAuditOverlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.AuditOverlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	mode := overlay.ModeView
	if req.Mode != "" {
		parsed, ok := overlay.ParseInteractionMode(req.Mode)
		if !ok {
			s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown interaction mode %q", req.Mode))
			return
		}
		mode = parsed
	}
	switch req.Resolution {
	case "", "keep-manual", "reset-to-preset", "dismiss":
	default:
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown resolution %q", req.Resolution))
		return
	}

	overlays := make([]overlay.Overlay, 0, len(req.Overlays))
	for _, item := range req.Overlays {
		category, ok := overlay.ParseCategory(item.Category)
		if !ok {
			s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown overlay category %q", item.Category))
			return
		}
		source := overlay.SourcePreset
		if item.Manual {
			source = overlay.SourceManual
		}
		overlays = append(overlays, overlay.Overlay{
			ID:             item.ID,
			Category:       category,
			Position:       overlay.Position{X: item.X, Y: item.Y},
			PositionSource: source,
			Opacity:        item.Opacity,
		})
	}

	board := overlay.NewBoard(s.logger, overlays...)
	board.SetMode(mode)

	preset := overlay.Preset{
		Name:    req.Preset.Name,
		Entries: make(map[string]overlay.PresetEntry, len(req.Preset.Entries)),
	}
	for id, entry := range req.Preset.Entries {
		var converted overlay.PresetEntry
		if entry.Position != nil {
			converted.Position = *entry.Position
			converted.HasPosition = true
		}
		if entry.Opacity != nil {
			converted.Opacity = *entry.Opacity
			converted.HasOpacity = true
		}
		preset.Entries[id] = converted
	}

	applied, conflicts := board.ApplyPreset(preset)
	if !applied {
		switch req.Resolution {
		case "keep-manual":
			_ = board.KeepManual()
		case "reset-to-preset":
			_ = board.ResetToPreset()
		case "dismiss":
			board.Dismiss()
		}
	}

	_, pending := board.PendingConflict()
	resp := api.AuditOverlayResponse{Applied: applied, Conflicts: conflicts, Pending: pending}
	for _, o := range board.Overlays() {
		resp.Overlays = append(resp.Overlays, api.AuditOverlayView{
			ID:        o.ID,
			Category:  o.Category.String(),
			X:         o.Position.X,
			Y:         o.Position.Y,
			Manual:    o.PositionSource == overlay.SourceManual,
			Opacity:   o.Opacity,
			Draggable: board.Draggable(o.ID),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}
