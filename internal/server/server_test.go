package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/goalnet/internal/config"
	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/network"
	"github.com/matzehuels/goalnet/pkg/pipeline"
	"github.com/matzehuels/goalnet/pkg/store"
)

func testServer(t *testing.T, cfg config.ServerConfig) (*Server, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	g := &network.Graph{
		Nodes: []network.Node{
			{ID: 1, Name: "Run a marathon", GoalType: network.GoalDirective},
			{ID: 2, Name: "Train", GoalType: network.GoalRoutine},
			{ID: 3, Name: "Stretch", GoalType: network.GoalTask},
		},
		Edges: []network.Edge{
			{From: 1, To: 2, RelationshipType: network.RelChild},
			{From: 2, To: 3, RelationshipType: network.RelChild},
		},
	}
	if err := st.PutNetwork(context.Background(), 7, g); err != nil {
		t.Fatalf("PutNetwork() error: %v", err)
	}
	logger := log.NewWithOptions(&strings.Builder{}, log.Options{})
	runner := pipeline.NewRunner(nil, nil, st, logger)
	return New(runner, cfg, logger), st
}

func do(t *testing.T, s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["code"]
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{`"status":"ok"`, `"version":`, `"commit":`, `"built":`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("body = %s, missing %s", rec.Body, want)
		}
	}
}

func TestGetNetwork(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})

	rec := do(t, s, http.MethodGet, "/network", "", UserHeader, "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	g, err := network.ReadGraph(rec.Body)
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("got %d nodes, %d edges; task goals should be hidden", len(g.Nodes), len(g.Edges))
	}
}

func TestGetNetworkUser(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.ServerConfig
		header []string
		status int
	}{
		{"missing header", config.ServerConfig{}, nil, http.StatusBadRequest},
		{"default user", config.ServerConfig{DefaultUser: 7}, nil, http.StatusOK},
		{"bad header", config.ServerConfig{}, []string{UserHeader, "abc"}, http.StatusBadRequest},
		{"negative header", config.ServerConfig{}, []string{UserHeader, "-1"}, http.StatusBadRequest},
		{"unknown user", config.ServerConfig{}, []string{UserHeader, "99"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := testServer(t, tt.cfg)
			rec := do(t, s, http.MethodGet, "/network", "", tt.header...)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
		})
	}
}

func TestUpdatePosition(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"ok", "/network/2/position", `{"x":12.5,"y":-40}`, http.StatusOK, ""},
		{"unknown goal", "/network/42/position", `{"x":1,"y":2}`, http.StatusNotFound, "NOT_FOUND"},
		{"bad id", "/network/abc/position", `{"x":1,"y":2}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing y", "/network/2/position", `{"x":1}`, http.StatusBadRequest, "INVALID_COORDINATE"},
		{"overflow", "/network/2/position", `{"x":1e999,"y":0}`, http.StatusBadRequest, "INVALID_COORDINATE"},
		{"string", "/network/2/position", `{"x":"NaN","y":0}`, http.StatusBadRequest, "INVALID_COORDINATE"},
		{"empty", "/network/2/position", ``, http.StatusBadRequest, "INVALID_COORDINATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, st := testServer(t, config.ServerConfig{})
			rec := do(t, s, http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if tt.code != "" {
				if got := errorCode(t, rec); got != tt.code {
					t.Errorf("code = %q, want %q", got, tt.code)
				}
				return
			}
			g, _ := st.Network(context.Background(), 7)
			n, _ := g.Node(2)
			if x, y := n.Position(); x != 12.5 || y != -40 {
				t.Errorf("stored position = (%v, %v)", x, y)
			}
		})
	}
}

func TestUpdatePositionRateLimit(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{RateLimit: 1, Burst: 2})

	var limited int
	for range 5 {
		rec := do(t, s, http.MethodPut, "/network/2/position", `{"x":1,"y":2}`, UserHeader, "7")
		if rec.Code == http.StatusTooManyRequests {
			limited++
			if rec.Header().Get("Retry-After") == "" {
				t.Error("missing Retry-After header")
			}
		}
	}
	if limited != 3 {
		t.Errorf("%d requests limited, want 3", limited)
	}

	// Another client has its own bucket.
	rec := do(t, s, http.MethodPut, "/network/2/position", `{"x":1,"y":2}`, UserHeader, "8")
	if rec.Code == http.StatusTooManyRequests {
		t.Error("second client should not be limited")
	}
}

func TestLayout(t *testing.T) {
	s, st := testServer(t, config.ServerConfig{})

	rec := do(t, s, http.MethodPost, "/network/layout", `{"base_spacing":300}`, UserHeader, "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		RunID string                  `json:"run_id"`
		Nodes []layout.PositionedNode `json:"nodes"`
		Edges []layout.StyledEdge     `json:"edges"`
		Saves layout.SaveReport       `json:"saves"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RunID == "" || len(resp.Nodes) != 2 || len(resp.Edges) != 1 {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Saves.Saved) != 2 {
		t.Errorf("saved %v, want both goals", resp.Saves.Saved)
	}

	g, _ := st.Network(context.Background(), 7)
	for _, n := range g.Nodes {
		if !n.Pinned() {
			t.Errorf("goal %d not persisted", n.ID)
		}
	}
}

func TestLayoutFormats(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{DefaultUser: 7})

	rec := do(t, s, http.MethodPost, "/network/layout?format=dot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.HasPrefix(rec.Body.String(), "digraph goals") {
		t.Errorf("body is not DOT: %s", rec.Body)
	}

	rec = do(t, s, http.MethodPost, "/network/layout?format=png", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/network/layout", `{"algorithm":"spring"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown algorithm status = %d", rec.Code)
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   layout.Point
	}{
		{"empty canvas", `{}`, http.StatusOK, layout.Point{}},
		{"no body", ``, http.StatusOK, layout.Point{}},
		{"first placed", `{"placed":[]}`, http.StatusOK, layout.Point{}},
		{"negative count", `{"count":-1}`, http.StatusBadRequest, layout.Point{}},
		{"bad spacing", `{"count":1,"base_spacing":-3}`, http.StatusBadRequest, layout.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := testServer(t, config.ServerConfig{})
			rec := do(t, s, http.MethodPost, "/network/place", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if tt.status != http.StatusOK {
				return
			}
			var p layout.Point
			json.NewDecoder(rec.Body).Decode(&p)
			if p != tt.want {
				t.Errorf("position = %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestPlaceMatchesEngine(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})

	rec := do(t, s, http.MethodPost, "/network/place", `{"count":2}`)
	var p layout.Point
	json.NewDecoder(rec.Body).Decode(&p)
	if want := layout.SpiralPosition(2, layout.DefaultBaseSpacing); p != want {
		t.Errorf("count placement = %+v, want %+v", p, want)
	}

	rec = do(t, s, http.MethodPost, "/network/place", `{"placed":[{"x":0,"y":0}]}`)
	json.NewDecoder(rec.Body).Decode(&p)
	if want := layout.NewNodePosition([]layout.Point{{}}, layout.DefaultBaseSpacing); p != want {
		t.Errorf("placed placement = %+v, want %+v", p, want)
	}
}

func TestNotFound(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	rec := do(t, s, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, "/network/", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPanicRecovered(t *testing.T) {
	s, _ := testServer(t, config.ServerConfig{})
	s.router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	if rec := do(t, s, http.MethodGet, "/boom", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("server unusable after panic: status = %d", rec.Code)
	}
}

func TestLimiterSet(t *testing.T) {
	var disabled *limiterSet
	if !disabled.allow("x") {
		t.Error("nil limiter set should allow")
	}
	if newLimiterSet(0, 5) != nil {
		t.Error("zero rate should disable limiting")
	}
	l := newLimiterSet(0.5, 0)
	if l.burst != 1 {
		t.Errorf("burst = %d, want 1", l.burst)
	}
}
