package daemon

import (
	"context"
	"net/http"
	"testing"

	"mediaproxy/internal/logging"
	"mediaproxy/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	addr := d.Addr()
	if addr == "" {
		t.Fatal("expected listen address after start")
	}
	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("health probe: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	status := d.Status()
	if !status.Running || status.LockFilePath == "" || status.QueueDBPath == "" {
		t.Fatalf("unexpected status %+v", status)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("second start of a running daemon must fail")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon must report stopped")
	}
}

func TestSecondInstanceRejectedByLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	secondCfg := *cfg
	secondCfg.Paths.APIBind = "127.0.0.1:0"
	secondStore := testsupport.MustOpenStore(t, &secondCfg)
	second, err := New(&secondCfg, secondStore, logging.NewNop())
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("second instance sharing the lock file must be rejected")
	}
}
