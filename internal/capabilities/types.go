package capabilities

// EngineStatus describes one external tool's installation state. It is an
// immutable snapshot, replaced wholesale on each probe.
type EngineStatus struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Version   string `json:"version,omitempty"`
	Path      string `json:"path,omitempty"`
}

// ResolveStatus extends EngineStatus with the RAW engine's runtime state.
type ResolveStatus struct {
	EngineStatus
	Edition            string `json:"edition,omitempty"`
	Running            bool   `json:"running"`
	ScriptingAvailable bool   `json:"scripting_available"`
}

// Routing values for RAW material.
const (
	RoutingResolve = "resolve"
	RoutingBlocked = "blocked"
)

// Capabilities is the engine availability snapshot served by the daemon.
// It is comparable so callers can check whether two fetches observed the
// same backend state.
type Capabilities struct {
	Timestamp        string        `json:"timestamp"`
	FFmpeg           EngineStatus  `json:"ffmpeg"`
	Resolve          ResolveStatus `json:"resolve"`
	RawRouting       string        `json:"raw_routing"`
	RawRoutingReason string        `json:"raw_routing_reason,omitempty"`
}
