package capabilities

import (
	"path/filepath"
	"strings"
)

// rawExtensions lists camera-original formats that always require the
// RAW-capable engine. Routing for these must be recomputed from the current
// snapshot on every check, never cached per file.
var rawExtensions = map[string]struct{}{
	"braw": {},
	"r3d":  {},
	"ari":  {},
	"arx":  {},
	"crm":  {},
	"nev":  {},
}

// Routing is the per-file processing decision derived from a snapshot.
type Routing struct {
	RequiresResolve bool   `json:"requires_resolve"`
	CanProcess      bool   `json:"can_process"`
	Reason          string `json:"reason,omitempty"`
}

// IsRawExtension reports whether the path's extension names a RAW camera
// format. Matching is case-insensitive on the substring after the last dot.
func IsRawExtension(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := rawExtensions[ext]
	return ok
}

// CheckFileRouting decides how a file should be processed under the given
// snapshot. A nil snapshot means no successful fetch has happened yet; RAW
// material is blocked until one does, while standard formats pass through.
func CheckFileRouting(snapshot *Capabilities, path string) Routing {
	if !IsRawExtension(path) {
		return Routing{CanProcess: true}
	}

	if snapshot == nil {
		return Routing{
			RequiresResolve: true,
			Reason:          "engine capabilities not yet loaded",
		}
	}

	if !snapshot.Resolve.Available {
		reason := snapshot.Resolve.Reason
		if reason == "" {
			reason = snapshot.RawRoutingReason
		}
		if reason == "" {
			reason = "RAW-capable engine is not available"
		}
		return Routing{RequiresResolve: true, Reason: reason}
	}

	return Routing{
		RequiresResolve: true,
		CanProcess:      true,
		Reason:          "will be processed externally",
	}
}
