// Package dropzone turns host drag-and-drop payloads into file-system path
// batches.
//
// Desktop shells deliver drops in two shapes: an item list (each entry
// tagged with a kind and an optional resolved path) and a flat file list.
// Both are supported; entries without a resolvable path are skipped rather
// than synthesized.
package dropzone

import (
	"strings"

	"log/slog"

	"mediaproxy/internal/logging"
)

// ItemKindFile marks an item-list entry that references a file or folder.
const ItemKindFile = "file"

// Item is one entry of an item-list drag payload.
type Item struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// File is one entry of a file-list drag payload.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Payload carries both drag payload shapes. A host populates whichever
// shape it supports; when both are present the item list wins.
type Payload struct {
	Items []Item `json:"items,omitempty"`
	Files []File `json:"files,omitempty"`
}

// ExtractPaths resolves local file-system paths from a drag payload. The
// result is empty when no entry exposes a path; callers treat that as an
// unusable event, not an error.
func ExtractPaths(payload Payload) []string {
	var paths []string

	if len(payload.Items) > 0 {
		for _, item := range payload.Items {
			if item.Kind != ItemKindFile {
				continue
			}
			if path := strings.TrimSpace(item.Path); path != "" {
				paths = append(paths, path)
			}
		}
		return paths
	}

	for _, file := range payload.Files {
		if path := strings.TrimSpace(file.Path); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// Zone accepts drops and reports resolved path batches to a callback.
type Zone struct {
	logger   *slog.Logger
	onPaths  func([]string)
	disabled bool
	hovering bool
}

// NewZone builds a drop zone. onPaths is invoked only for drops that
// resolve at least one path.
func NewZone(logger *slog.Logger, onPaths func([]string)) *Zone {
	return &Zone{
		logger:  logging.WithComponent(logger, "dropzone"),
		onPaths: onPaths,
	}
}

// SetDisabled toggles the zone. A disabled zone ignores enters and drops
// but still suppresses the host's native drop handling.
func (z *Zone) SetDisabled(disabled bool) {
	z.disabled = disabled
	if disabled {
		z.hovering = false
	}
}

// Disabled reports whether the zone currently ignores drops.
func (z *Zone) Disabled() bool {
	return z.disabled
}

// Hovering reports whether a drag is currently over the zone.
func (z *Zone) Hovering() bool {
	return z.hovering
}

// DragEnter marks the zone as hovered. No-op while disabled.
func (z *Zone) DragEnter() {
	if z.disabled {
		return
	}
	z.hovering = true
}

// DragOver reports whether the host's default action must be suppressed.
// It always is, even while disabled, so the OS never takes over the drop.
func (z *Zone) DragOver() bool {
	return true
}

// DragLeave clears the hover state.
func (z *Zone) DragLeave() {
	z.hovering = false
}

// Drop consumes a payload and returns the resolved paths. The callback
// fires only when at least one path was resolved; an empty resolution is a
// silent no-op. Disabled zones drop nothing.
func (z *Zone) Drop(payload Payload) []string {
	z.hovering = false
	if z.disabled {
		return nil
	}

	paths := ExtractPaths(payload)
	if len(paths) == 0 {
		z.logger.Debug("drop carried no resolvable paths")
		return nil
	}

	z.logger.Info("drop accepted", logging.Int("paths", len(paths)))
	if z.onPaths != nil {
		z.onPaths(paths)
	}
	return paths
}
