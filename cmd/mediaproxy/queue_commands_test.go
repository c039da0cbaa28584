package main

import (
	"testing"
)

func TestQueueListAndStats(t *testing.T) {
	env := setupCLITestEnv(t)

	seedJob(t, env, []string{"/media/alpha.mov"})
	seedJob(t, env, []string{"/media/beta.mov"})

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "/media/alpha.mov")
	requireContains(t, out, "/media/beta.mov")
	requireContains(t, out, "pending")

	out, _, err = runCLI(t, []string{"queue", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("queue stats: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "Total")
}

func TestQueueListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "list", "--status", "paused"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestQueueShowAndReset(t *testing.T) {
	env := setupCLITestEnv(t)

	job := seedJob(t, env, []string{"/media/alpha.mov", "/media/alpha_audio.mov"})

	out, _, err := runCLI(t, []string{"queue", "show", job.UUID}, env.configPath)
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, job.UUID)
	requireContains(t, out, "/media/alpha_audio.mov")

	out, _, err = runCLI(t, []string{"queue", "reset"}, env.configPath)
	if err != nil {
		t.Fatalf("queue reset: %v", err)
	}
	requireContains(t, out, "Removed 1 jobs")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list after reset: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}
