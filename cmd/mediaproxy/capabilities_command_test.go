package main

import (
	"encoding/json"
	"testing"

	"mediaproxy/internal/capabilities"
)

func TestCapabilitiesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"capabilities"}, env.configPath)
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "DaVinci Resolve")
	requireContains(t, out, "RAW routing: blocked")

	out, _, err = runCLI(t, []string{"capabilities", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("capabilities --json: %v", err)
	}
	var snapshot capabilities.Capabilities
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if !snapshot.FFmpeg.Available {
		t.Fatalf("expected stubbed ffmpeg available, got %+v", snapshot.FFmpeg)
	}
}

func TestRoutingCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"routing", "/media/clip.mov"}, env.configPath)
	if err != nil {
		t.Fatalf("routing non-raw: %v", err)
	}
	requireContains(t, out, "Requires RAW engine: no")
	requireContains(t, out, "Can process: yes")

	out, _, err = runCLI(t, []string{"routing", "/media/clip.braw"}, env.configPath)
	if err != nil {
		t.Fatalf("routing raw: %v", err)
	}
	requireContains(t, out, "Requires RAW engine: yes")
	requireContains(t, out, "Can process: no")
	requireContains(t, out, "Reason:")
}
