package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediaproxy/internal/api"
	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/config"
	"mediaproxy/internal/dropzone"
	"mediaproxy/internal/logging"
	"mediaproxy/internal/overlay"
	"mediaproxy/internal/testsupport"
)

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	store := testsupport.MustOpenStore(t, cfg)
	d, err := New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	server := httptest.NewServer(d.server.handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, testsupport.NewConfig(t))

	var health api.HealthResponse
	resp := getJSON(t, server.URL+"/health", &health)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if health.Status != "ok" || health.PID == 0 {
		t.Fatalf("unexpected health payload %+v", health)
	}
	if health.AuditMode {
		t.Fatal("default mode must not report audit mode")
	}
}

func TestCapabilitiesEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	cfg.Engines.ResolveBinary = "definitely-not-installed-resolve"
	server := newTestServer(t, cfg)

	var snapshot capabilities.Capabilities
	resp := getJSON(t, server.URL+"/api/capabilities", &snapshot)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("capabilities status = %d", resp.StatusCode)
	}
	if !snapshot.FFmpeg.Available {
		t.Fatalf("expected stubbed ffmpeg available, got %+v", snapshot.FFmpeg)
	}
	if snapshot.Resolve.Available {
		t.Fatal("expected resolve unavailable")
	}
	if snapshot.RawRouting != capabilities.RoutingBlocked || snapshot.RawRoutingReason == "" {
		t.Fatalf("expected blocked routing with reason, got %+v", snapshot)
	}
}

func TestRoutingEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	server := newTestServer(t, cfg)

	var routing api.RoutingResponse
	getJSON(t, server.URL+"/api/routing?path=/media/a.braw", &routing)
	if !routing.Routing.RequiresResolve || routing.Routing.CanProcess {
		t.Fatalf("RAW path without resolve must be blocked, got %+v", routing.Routing)
	}

	getJSON(t, server.URL+"/api/routing?path=/media/a.mov", &routing)
	if routing.Routing.RequiresResolve || !routing.Routing.CanProcess {
		t.Fatalf("standard path must pass, got %+v", routing.Routing)
	}
}

func TestRawJobRejectedWhenResolveUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	cfg.Engines.ResolveBinary = "definitely-not-installed-resolve"
	server := newTestServer(t, cfg)

	resp := postJSON(t, server.URL+"/control/jobs/create", api.CreateJobRequest{
		SourcePaths: []string{"/media/shoot.braw"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var errBody map[string]any
	decodeBody(t, resp, &errBody)
	message, _ := errBody["error"].(string)
	if !strings.Contains(message, "not found") && !strings.Contains(message, "not configured") {
		t.Fatalf("rejection must surface the capability reason, got %q", message)
	}

	var list api.QueueListResponse
	getJSON(t, server.URL+"/control/queue", &list)
	if len(list.Jobs) != 0 {
		t.Fatalf("rejected job must not be queued, got %v", list.Jobs)
	}
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	server := newTestServer(t, cfg)

	resp := postJSON(t, server.URL+"/control/jobs/create", api.CreateJobRequest{
		SourcePaths: []string{"/media/a.mov"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created api.CreateJobResponse
	decodeBody(t, resp, &created)
	if created.JobID == "" {
		t.Fatal("expected job_id")
	}
	jobURL := fmt.Sprintf("%s/control/jobs/%s", server.URL, created.JobID)

	if resp := postJSON(t, jobURL+"/start", struct{}{}); resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	if resp := postJSON(t, jobURL+"/start", struct{}{}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("double start status = %d, want 409", resp.StatusCode)
	}

	if resp := postJSON(t, jobURL+"/status", api.StatusReportRequest{ProgressPercent: 40, ProgressMessage: "encoding"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("progress report status = %d", resp.StatusCode)
	}
	if resp := postJSON(t, jobURL+"/status", api.StatusReportRequest{Status: "completed"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("terminal report status = %d", resp.StatusCode)
	}

	var jobResp api.JobResponse
	getJSON(t, jobURL, &jobResp)
	if jobResp.Job.Status != "completed" || jobResp.Job.ProgressPercent != 100 {
		t.Fatalf("unexpected job view %+v", jobResp.Job)
	}

	var list api.QueueListResponse
	getJSON(t, server.URL+"/control/queue?status=completed", &list)
	if len(list.Jobs) != 1 {
		t.Fatalf("expected 1 completed job, got %d", len(list.Jobs))
	}

	resetResp := postJSON(t, server.URL+"/control/queue/reset", struct{}{})
	var reset api.ResetResponse
	decodeBody(t, resetResp, &reset)
	if reset.Removed != 1 {
		t.Fatalf("expected 1 removed, got %d", reset.Removed)
	}
}

func TestValidationErrorsNameFields(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	server := newTestServer(t, cfg)

	req := api.CreateJobRequest{SourcePaths: []string{"/media/a.mov"}}
	req.DeliverSettings.Video.Codec = "xvid"
	resp := postJSON(t, server.URL+"/control/jobs/create", req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var body api.ValidationErrorResponse
	decodeBody(t, resp, &body)
	if len(body.Fields) != 1 || body.Fields[0].Field != "video.codec" {
		t.Fatalf("expected video.codec field error, got %+v", body)
	}
}

func TestExperimentalEndpointsOmittedByDefault(t *testing.T) {
	server := newTestServer(t, testsupport.NewConfig(t))

	resp := getJSON(t, server.URL+"/api/audit", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("default mode must omit audit endpoint entirely, got %d", resp.StatusCode)
	}
	clearResp := postJSON(t, server.URL+"/control/queue/clear-completed", struct{}{})
	if clearResp.StatusCode != http.StatusNotFound {
		t.Fatalf("default mode must omit clear-completed, got %d", clearResp.StatusCode)
	}
	dropResp := postJSON(t, server.URL+"/api/audit/drop", api.AuditDropRequest{})
	if dropResp.StatusCode != http.StatusNotFound {
		t.Fatalf("default mode must omit audit drop, got %d", dropResp.StatusCode)
	}
	overlayResp := postJSON(t, server.URL+"/api/audit/overlay", api.AuditOverlayRequest{})
	if overlayResp.StatusCode != http.StatusNotFound {
		t.Fatalf("default mode must omit audit overlay, got %d", overlayResp.StatusCode)
	}
}

func TestAuditModeExposesExperimentalSurface(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAuditMode())
	server := newTestServer(t, cfg)

	var health api.HealthResponse
	getJSON(t, server.URL+"/health", &health)
	if !health.AuditMode {
		t.Fatal("audit mode must be reported in health")
	}

	var audit map[string]any
	resp := getJSON(t, server.URL+"/api/audit", &audit)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit endpoint status = %d", resp.StatusCode)
	}
	if audit["audit_mode"] != true {
		t.Fatalf("unexpected audit payload %v", audit)
	}

	clearResp := postJSON(t, server.URL+"/control/queue/clear-completed", struct{}{})
	if clearResp.StatusCode != http.StatusOK {
		t.Fatalf("clear-completed status = %d", clearResp.StatusCode)
	}
}

func TestAuditDropEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAuditMode(), testsupport.WithStubbedBinaries("ffmpeg"))
	server := newTestServer(t, cfg)

	req := api.AuditDropRequest{Payload: dropzone.Payload{Items: []dropzone.Item{
		{Kind: "file", Path: "/media/a.mov"},
		{Kind: "string", Path: "/media/ignored.txt"},
		{Kind: "file", Path: "/media/shoot.braw"},
	}}}
	resp := postJSON(t, server.URL+"/api/audit/drop", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit drop status = %d", resp.StatusCode)
	}
	var body api.AuditDropResponse
	decodeBody(t, resp, &body)
	if !body.Accepted || len(body.Results) != 2 {
		t.Fatalf("expected 2 resolved paths, got %+v", body)
	}
	if body.Results[0].Path != "/media/a.mov" || !body.Results[0].Routing.CanProcess {
		t.Fatalf("standard path must pass, got %+v", body.Results[0])
	}
	if !body.Results[1].Routing.RequiresResolve || body.Results[1].Routing.CanProcess {
		t.Fatalf("RAW path without resolve must be blocked, got %+v", body.Results[1])
	}

	req.Disabled = true
	resp = postJSON(t, server.URL+"/api/audit/drop", req)
	var disabled api.AuditDropResponse
	decodeBody(t, resp, &disabled)
	if disabled.Accepted || len(disabled.Results) != 0 {
		t.Fatalf("disabled zone must drop nothing, got %+v", disabled)
	}
}

func TestAuditOverlayEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAuditMode())
	server := newTestServer(t, cfg)

	halfOpacity := 0.5
	req := api.AuditOverlayRequest{
		Mode: "burn-in",
		Overlays: []api.AuditOverlayItem{
			{ID: "timecode", Category: "timecode", X: 77, Y: 88, Manual: true, Opacity: 1},
			{ID: "image", Category: "image", X: 30, Y: 30, Opacity: 1},
		},
		Preset: api.AuditPreset{Name: "lower-thirds", Entries: map[string]api.AuditPresetEntry{
			"timecode": {Position: &overlay.Position{X: 5, Y: 95}},
			"image":    {Opacity: &halfOpacity},
		}},
	}

	// Without a resolution the conflicting preset parks pending.
	resp := postJSON(t, server.URL+"/api/audit/overlay", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit overlay status = %d", resp.StatusCode)
	}
	var parked api.AuditOverlayResponse
	decodeBody(t, resp, &parked)
	if parked.Applied || !parked.Pending {
		t.Fatalf("manual position must park the preset, got %+v", parked)
	}
	if len(parked.Conflicts) != 1 || parked.Conflicts[0] != "timecode" {
		t.Fatalf("unexpected conflicts %v", parked.Conflicts)
	}

	// keep-manual: coordinates stand, the opacity effect still lands, and
	// the burn-in drag gate shows through the draggable flags.
	req.Resolution = "keep-manual"
	resp = postJSON(t, server.URL+"/api/audit/overlay", req)
	var resolved api.AuditOverlayResponse
	decodeBody(t, resp, &resolved)
	if resolved.Pending {
		t.Fatalf("resolution must clear the pending conflict, got %+v", resolved)
	}
	views := make(map[string]api.AuditOverlayView, len(resolved.Overlays))
	for _, view := range resolved.Overlays {
		views[view.ID] = view
	}
	timecode := views["timecode"]
	if timecode.X != 77 || timecode.Y != 88 || !timecode.Manual {
		t.Fatalf("keep-manual must leave coordinates and flag, got %+v", timecode)
	}
	if !timecode.Draggable {
		t.Fatalf("timecode must drag in burn-in mode, got %+v", timecode)
	}
	image := views["image"]
	if image.Opacity != 0.5 {
		t.Fatalf("opacity effect must still apply on keep-manual, got %+v", image)
	}
	if image.Draggable {
		t.Fatalf("image must not drag in burn-in mode, got %+v", image)
	}

	bad := req
	bad.Overlays = []api.AuditOverlayItem{{ID: "x", Category: "watermark"}}
	if resp := postJSON(t, server.URL+"/api/audit/overlay", bad); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unknown category must 422, got %d", resp.StatusCode)
	}
}

func TestBearerTokenGuardsControlRoutes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("sesame"))
	server := newTestServer(t, cfg)

	resp := postJSON(t, server.URL+"/control/queue/reset", struct{}{})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token must 401, got %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/control/queue/reset", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer sesame")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authorized request: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("authorized reset status = %d", authed.StatusCode)
	}

	if resp := getJSON(t, server.URL+"/health", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("health must stay unauthenticated, got %d", resp.StatusCode)
	}
}

func TestRawJobAcceptedWhenResolveReady(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()
	go func() {
		for {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}
			conn.Close()
		}
	}()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "resolve"))
	cfg.Engines.ResolveBinary = "resolve"
	cfg.Engines.ResolveScriptingAddr = listener.Addr().String()
	server := newTestServer(t, cfg)

	resp := postJSON(t, server.URL+"/control/jobs/create", api.CreateJobRequest{
		SourcePaths: []string{"/media/shoot.braw"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 with resolve ready, got %d", resp.StatusCode)
	}
	var created api.CreateJobResponse
	decodeBody(t, resp, &created)

	var jobResp api.JobResponse
	getJSON(t, fmt.Sprintf("%s/control/jobs/%s", server.URL, created.JobID), &jobResp)
	if jobResp.Job.Engine != "resolve" {
		t.Fatalf("RAW job must route to resolve engine, got %q", jobResp.Job.Engine)
	}
}
