package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mediaproxy/internal/api"
)

func createJobViaCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	full := append([]string{"job", "create"}, args...)
	full = append(full, "--json")
	out, _, err := runCLI(t, full, env.configPath)
	if err != nil {
		t.Fatalf("job create: %v", err)
	}
	var created api.CreateJobResponse
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode create response: %v (output %q)", err, out)
	}
	if created.JobID == "" {
		t.Fatalf("expected job id in output %q", out)
	}
	return created.JobID
}

func TestJobLifecycleViaCLI(t *testing.T) {
	env := setupCLITestEnv(t)

	jobID := createJobViaCLI(t, env, "/media/interview.mov")

	out, _, err := runCLI(t, []string{"job", "start", jobID}, env.configPath)
	if err != nil {
		t.Fatalf("job start: %v", err)
	}
	requireContains(t, out, "running")

	out, _, err = runCLI(t, []string{"job", "report", jobID, "--percent", "40", "--message", "transcoding"}, env.configPath)
	if err != nil {
		t.Fatalf("job report progress: %v", err)
	}
	requireContains(t, out, "40.0%")

	out, _, err = runCLI(t, []string{"job", "report", jobID, "--status", "completed"}, env.configPath)
	if err != nil {
		t.Fatalf("job report terminal: %v", err)
	}
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"queue", "show", jobID}, env.configPath)
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, "Status: completed")
	requireContains(t, out, "Progress: 100.0%")
}

func TestJobCancelBeforeStart(t *testing.T) {
	env := setupCLITestEnv(t)

	jobID := createJobViaCLI(t, env, "/media/interview.mov")

	out, _, err := runCLI(t, []string{"job", "cancel", jobID}, env.configPath)
	if err != nil {
		t.Fatalf("job cancel: %v", err)
	}
	requireContains(t, out, "Cancellation requested")
}

func TestJobCreateValidationErrorsNameFields(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := runCLI(t, []string{"job", "create", "/media/interview.mov", "--video-codec", "xvid"}, env.configPath)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	requireContains(t, stderr, "video.codec")
	requireContains(t, stderr, "xvid")
}

func TestJobStartConflictSurfacesDaemonMessage(t *testing.T) {
	env := setupCLITestEnv(t)

	jobID := createJobViaCLI(t, env, "/media/interview.mov")

	if _, _, err := runCLI(t, []string{"job", "start", jobID}, env.configPath); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, _, err := runCLI(t, []string{"job", "start", jobID}, env.configPath)
	if err == nil {
		t.Fatal("expected second start to fail")
	}
	if !strings.Contains(err.Error(), "running") {
		t.Fatalf("expected transition detail in error, got %v", err)
	}
}
