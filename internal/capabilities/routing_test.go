package capabilities

import "testing"

func TestCheckFileRoutingExtensionSet(t *testing.T) {
	available := &Capabilities{
		Resolve:    ResolveStatus{EngineStatus: EngineStatus{Available: true}, ScriptingAvailable: true},
		RawRouting: RoutingResolve,
	}

	rawPaths := []string{
		"/media/clip.braw",
		"/media/CLIP.BRAW",
		"/media/a.r3d",
		"/media/b.ari",
		"/media/c.arx",
		"/media/d.crm",
		"/media/e.nev",
	}
	for _, path := range rawPaths {
		routing := CheckFileRouting(available, path)
		if !routing.RequiresResolve {
			t.Errorf("CheckFileRouting(%q).RequiresResolve = false, want true", path)
		}
		if !routing.CanProcess {
			t.Errorf("CheckFileRouting(%q).CanProcess = false, want true", path)
		}
		if routing.Reason == "" {
			t.Errorf("CheckFileRouting(%q) RAW routing must carry a reason", path)
		}
	}

	standardPaths := []string{
		"/media/clip.mov",
		"/media/clip.mp4",
		"/media/clip.mxf",
		"/media/noextension",
		"/media/clip.braw.mp4",
	}
	for _, path := range standardPaths {
		routing := CheckFileRouting(available, path)
		if routing.RequiresResolve {
			t.Errorf("CheckFileRouting(%q).RequiresResolve = true, want false", path)
		}
		if !routing.CanProcess {
			t.Errorf("CheckFileRouting(%q).CanProcess = false, want true", path)
		}
	}
}

func TestCheckFileRoutingResolveUnavailable(t *testing.T) {
	snapshots := []*Capabilities{
		{
			Resolve:    ResolveStatus{EngineStatus: EngineStatus{Reason: "DaVinci Resolve is not installed"}},
			RawRouting: RoutingBlocked,
		},
		{
			RawRouting:       RoutingBlocked,
			RawRoutingReason: "RAW engine scripting interface is not reachable",
		},
		{RawRouting: RoutingBlocked},
	}

	for i, snapshot := range snapshots {
		routing := CheckFileRouting(snapshot, "/media/clip.braw")
		if !routing.RequiresResolve {
			t.Errorf("snapshot %d: RequiresResolve = false, want true", i)
		}
		if routing.CanProcess {
			t.Errorf("snapshot %d: CanProcess = true, want false", i)
		}
		if routing.Reason == "" {
			t.Errorf("snapshot %d: blocked RAW routing must carry a non-empty reason", i)
		}
	}
}

func TestCheckFileRoutingBeforeFirstFetch(t *testing.T) {
	routing := CheckFileRouting(nil, "/media/clip.braw")
	if !routing.RequiresResolve || routing.CanProcess {
		t.Fatalf("RAW routing before first fetch must be blocked, got %+v", routing)
	}
	if routing.Reason == "" {
		t.Fatal("expected a reason explaining the missing snapshot")
	}

	standard := CheckFileRouting(nil, "/media/clip.mov")
	if standard.RequiresResolve || !standard.CanProcess {
		t.Fatalf("standard formats must pass without a snapshot, got %+v", standard)
	}
}
