package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"planline/internal/app"
	"planline/internal/domain"
)

var fixedNow = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T, authCfg AuthConfig) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	a, err := app.Open(context.Background(), app.Options{
		Workspace:  t.TempDir(),
		ActorID:    "tester",
		Registerer: reg,
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	handler, err := New(Config{
		Store:      a.Store,
		Repo:       a.Repo,
		BasePath:   "/v0",
		Auth:       authCfg,
		Gatherer:   reg,
		Registerer: reg,
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	ts := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			a.Close()
		},
	}
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func expectError(t *testing.T, res *http.Response, data []byte, status int, code string) errorEnvelope {
	t.Helper()
	if res.StatusCode != status {
		t.Fatalf("expected %d, got %d: %s", status, res.StatusCode, string(data))
	}
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal error: %v (%s)", err, string(data))
	}
	if env.Error.Code != code {
		t.Fatalf("expected code %s, got %s", code, env.Error.Code)
	}
	return env
}

func TestHealthAndHome(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v0/home", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("home: %d %s", res.StatusCode, string(data))
	}
	var home struct {
		NextDates []struct {
			Label string `json:"label"`
			Date  string `json:"date"`
		} `json:"next_dates"`
		Drift struct {
			ComputePending bool `json:"compute_pending"`
		} `json:"drift"`
	}
	if err := json.Unmarshal(data, &home); err != nil {
		t.Fatalf("unmarshal home: %v", err)
	}
	if len(home.NextDates) != 3 || home.NextDates[0].Date != "2025-01-15" {
		t.Fatalf("unexpected next dates: %+v", home.NextDates)
	}
	if !home.Drift.ComputePending {
		t.Fatalf("drift should be a placeholder")
	}
}

func TestGatewayTwoWaitsForContentSummary(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()
	base := srv.URL + "/v0"

	res, data := doJSON(t, client, http.MethodPost, base+"/gateways/G2/transitions/submit", nil, nil)
	env := expectError(t, res, data, http.StatusUnprocessableEntity, "not_ready")
	if env.Error.Message == "" {
		t.Fatalf("not ready should carry a reason")
	}

	res, data = doJSON(t, client, http.MethodPost, base+"/consultations/content/summary/publish", nil, nil)
	expectError(t, res, data, http.StatusUnprocessableEntity, "publish_blocked")

	res, data = doJSON(t, client, http.MethodPost, base+"/consultations/content/representations", nil, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("add representation: %d %s", res.StatusCode, string(data))
	}
	var rep domain.Representation
	_ = json.Unmarshal(data, &rep)
	repURL := base + "/consultations/content/representations/" + rep.ID

	res, data = doJSON(t, client, http.MethodPatch, repURL, map[string]any{"status": "summarized"}, nil)
	expectError(t, res, data, http.StatusConflict, "invalid_transition")

	for _, status := range []string{"triaged", "summarized"} {
		res, data = doJSON(t, client, http.MethodPatch, repURL, map[string]any{"status": status}, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("set %s: %d %s", status, res.StatusCode, string(data))
		}
	}
	res, data = doJSON(t, client, http.MethodPost, base+"/consultations/content/summary/publish", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("publish summary: %d %s", res.StatusCode, string(data))
	}

	// Ready, but the pack has not been drafted.
	res, data = doJSON(t, client, http.MethodPost, base+"/gateways/G2/transitions/submit", nil, nil)
	expectError(t, res, data, http.StatusConflict, "invalid_transition")

	res, data = doJSON(t, client, http.MethodPost, base+"/gateways/G2/transitions/drafting", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("drafting: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, base+"/gateways/G2/transitions/submit", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("submit: %d %s", res.StatusCode, string(data))
	}
	var gw GatewayResponse
	if err := json.Unmarshal(data, &gw); err != nil {
		t.Fatalf("unmarshal gateway: %v", err)
	}
	if gw.Gateway.Status != domain.GatewaySubmitted || !gw.Readiness.OK {
		t.Fatalf("unexpected gateway %+v", gw)
	}

	res, data = doJSON(t, client, http.MethodPost, base+"/gateways/G1/transitions/receive-advice", nil, nil)
	expectError(t, res, data, http.StatusBadRequest, "unsupported_for_gateway")
}

func TestNoticeNeedsTimetable(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()
	base := srv.URL + "/v0"

	res, data := doJSON(t, client, http.MethodPost, base+"/timeline/notice/publish", nil, nil)
	env := expectError(t, res, data, http.StatusUnprocessableEntity, "timetable_not_published")
	if env.Error.Message != "Publish timetable first" {
		t.Fatalf("message = %q", env.Error.Message)
	}
	for _, p := range []string{"/timeline/timetable/publish", "/timeline/notice/publish"} {
		res, data = doJSON(t, client, http.MethodPost, base+p, nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s: %d %s", p, res.StatusCode, string(data))
		}
	}
	var tl TimelineResponse
	if err := json.Unmarshal(data, &tl); err != nil {
		t.Fatalf("unmarshal timeline: %v", err)
	}
	if len(tl.Readiness) != 3 || tl.Readiness[0].Hint != "Earliest publish date: 2025-05-15" {
		t.Fatalf("unexpected readiness %+v", tl.Readiness)
	}

	res, data = doJSON(t, client, http.MethodPut, base+"/timeline/scoping-end", map[string]any{"end": "15/02/2025"}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date should be rejected, got %d %s", res.StatusCode, string(data))
	}
}

func TestInvalidPathValues(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v0/gateways/G9", nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown gateway, got %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/v0/signals/nope", nil, nil)
	expectError(t, res, data, http.StatusNotFound, "not_found")
}

func TestBearerAuth(t *testing.T) {
	secret := "test-secret"
	srv := newTestServer(t, AuthConfig{JWTSecret: secret})
	client := srv.Client()
	base := srv.URL + "/v0"

	res, data := doJSON(t, client, http.MethodGet, base+"/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health should stay open: %d", res.StatusCode)
	}
	res, data = doJSON(t, client, http.MethodGet, base+"/home", nil, nil)
	expectError(t, res, data, http.StatusUnauthorized, "unauthorized")

	res, data = doJSON(t, client, http.MethodGet, base+"/home", nil, map[string]string{"Authorization": "Bearer nope"})
	expectError(t, res, data, http.StatusUnauthorized, "invalid_credentials")

	token, err := SignToken(secret, "officer-1", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	authz := map[string]string{"Authorization": "Bearer " + token}
	res, data = doJSON(t, client, http.MethodPost, base+"/snapshots", nil, authz)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("snapshot: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, base+"/events?type=snapshot.create", nil, authz)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("events: %d %s", res.StatusCode, string(data))
	}
	var page PaginatedEvents
	_ = json.Unmarshal(data, &page)
	if len(page.Items) != 1 || page.Items[0].ActorID != "officer-1" {
		t.Fatalf("event should be attributed to the token subject: %+v", page.Items)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()

	doJSON(t, client, http.MethodPost, srv.URL+"/v0/gateways/G3/transitions/submit", nil, nil)
	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/metrics", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", res.StatusCode)
	}
	body := string(data)
	for _, want := range []string{"planline_lifecycle_rejections_total", "planline_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}

func TestRepresentationEditIsAllOrNothing(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()
	base := srv.URL + "/v0"

	res, data := doJSON(t, client, http.MethodPost, base+"/consultations/content/representations", nil, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("add representation: %d %s", res.StatusCode, string(data))
	}
	var rep domain.Representation
	_ = json.Unmarshal(data, &rep)
	repURL := base + "/consultations/content/representations/" + rep.ID

	// unread cannot jump to summarized, so the summary edit must not land either.
	res, data = doJSON(t, client, http.MethodPatch, repURL, map[string]any{"summary": "EDITED", "status": "summarized"}, nil)
	expectError(t, res, data, http.StatusConflict, "invalid_transition")

	res, data = doJSON(t, client, http.MethodGet, base+"/consultations/content", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get consultation: %d %s", res.StatusCode, string(data))
	}
	var c domain.Consultation
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("unmarshal consultation: %v", err)
	}
	if len(c.Representations) != 1 {
		t.Fatalf("expected one representation, got %+v", c.Representations)
	}
	got := c.Representations[0]
	if got.Summary == "EDITED" || got.Status != domain.RepresentationStatus("unread") {
		t.Fatalf("rejected edit was partly saved: %+v", got)
	}

	res, data = doJSON(t, client, http.MethodPatch, repURL, map[string]any{"summary": "EDITED", "status": "triaged"}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("combined edit: %d %s", res.StatusCode, string(data))
	}
	_ = json.Unmarshal(data, &got)
	if got.Summary != "EDITED" || got.Status != domain.RepresentationStatus("triaged") {
		t.Fatalf("combined edit not applied: %+v", got)
	}
}

func TestOpenAPIConcurrentRequests(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()

	const n = 8
	bodies := make([][]byte, n)
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := client.Get(srv.URL + "/v0/openapi.json")
			if err != nil {
				return
			}
			defer res.Body.Close()
			statuses[i] = res.StatusCode
			bodies[i], _ = io.ReadAll(res.Body)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if statuses[i] != http.StatusOK {
			t.Fatalf("request %d: status %d", i, statuses[i])
		}
		if !bytes.Equal(bodies[i], bodies[0]) {
			t.Fatalf("request %d returned a different document", i)
		}
	}
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(bodies[0], &doc); err != nil {
		t.Fatalf("unmarshal openapi: %v", err)
	}
	if len(doc.Paths) == 0 {
		t.Fatalf("openapi document has no paths")
	}
}

func TestSitesAdvanceStopsAtAllocate(t *testing.T) {
	srv := newTestServer(t, AuthConfig{})
	client := srv.Client()
	base := srv.URL + "/v0"

	res, data := doJSON(t, client, http.MethodPost, base+"/sites", map[string]any{"name": "Land west of the bypass"}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("add site: %d %s", res.StatusCode, string(data))
	}
	var site domain.Site
	_ = json.Unmarshal(data, &site)
	if site.Stage != domain.SiteIdentify || site.Ref != "LAA004" {
		t.Fatalf("unexpected new site: %+v", site)
	}
	siteURL := base + "/sites/" + site.ID

	res, data = doJSON(t, client, http.MethodPatch, siteURL, map[string]any{"area_ha": 4.2, "notes": "Flood zone 1"}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update site: %d %s", res.StatusCode, string(data))
	}
	for _, want := range []domain.SiteStage{domain.SiteAssess, domain.SiteAllocate} {
		res, data = doJSON(t, client, http.MethodPost, siteURL+"/advance", nil, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("advance: %d %s", res.StatusCode, string(data))
		}
		_ = json.Unmarshal(data, &site)
		if site.Stage != want {
			t.Fatalf("stage = %s, want %s", site.Stage, want)
		}
	}
	res, data = doJSON(t, client, http.MethodPost, siteURL+"/advance", nil, nil)
	expectError(t, res, data, http.StatusConflict, "invalid_transition")

	res, data = doJSON(t, client, http.MethodGet, base+"/sites?stage=allocate", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list sites: %d %s", res.StatusCode, string(data))
	}
	var allocated []domain.Site
	_ = json.Unmarshal(data, &allocated)
	if len(allocated) != 2 || allocated[1].ID != site.ID || allocated[1].Notes != "Flood zone 1" {
		t.Fatalf("unexpected allocated sites: %+v", allocated)
	}

	res, data = doJSON(t, client, http.MethodDelete, siteURL, nil, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("remove site: %d %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, siteURL+"/advance", nil, nil)
	expectError(t, res, data, http.StatusNotFound, "not_found")

	res, data = doJSON(t, client, http.MethodPatch, base+"/site-tasks/nope", map[string]any{"status": "done"}, nil)
	expectError(t, res, data, http.StatusNotFound, "not_found")
}
