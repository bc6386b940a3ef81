package orchestrator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sitescout-io/sitescout/internal/agent"
	"github.com/sitescout-io/sitescout/internal/models"
)

// passthroughGoals is the test query collaborator: the site URL is the
// target and the query is the goal verbatim.
func passthroughGoals(site models.Site, query string) (string, string) {
	return site.URL, query
}

func writeFrame(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// scriptedServer routes on the target URL in the request body and plays
// the named script for it.
func scriptedServer(t *testing.T, scripts map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL  string `json:"url"`
			Goal string `json:"goal"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		script, ok := scripts[req.URL]
		if !ok {
			t.Errorf("no script for target %q", req.URL)
			return
		}
		script(w, r)
	}))
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func newTestOrchestrator(endpoint string, cache *ResultCache) *Orchestrator {
	return New(Options{
		Endpoint:    endpoint,
		APIKey:      "key",
		IdleTimeout: 2 * time.Second,
		Goals:       passthroughGoals,
		Cache:       cache,
	})
}

func TestDispatchAggregatesMixedOutcomes(t *testing.T) {
	srv := scriptedServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"https://a.example": func(w http.ResponseWriter, r *http.Request) {
			writeFrame(w, `{"type":"STEP","message":"x"}`)
			writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"r":1}}`)
		},
		"https://b.example": func(w http.ResponseWriter, r *http.Request) {
			writeFrame(w, `{"type":"ERROR","message":"fail"}`)
		},
		"https://c.example": func(w http.ResponseWriter, r *http.Request) {
			// No events; the stream ends silently.
		},
	})
	defer srv.Close()

	o := newTestOrchestrator(srv.URL, nil)
	sites := []models.Site{
		{Name: "A", URL: "https://a.example"},
		{Name: "B", URL: "https://b.example"},
		{Name: "C", URL: "https://c.example"},
	}
	if err := o.Dispatch("widgets", sites); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if o.Phase() != PhaseSearching {
		t.Errorf("phase after dispatch = %s, want %s", o.Phase(), PhaseSearching)
	}

	waitUntil(t, o.AllTerminal)

	counts := o.StatusCounts()
	if counts[agent.StatusComplete] != 1 || counts[agent.StatusError] != 2 {
		t.Errorf("counts = %v, want Complete:1 Error:2", counts)
	}

	results := o.Results()
	if len(results) != 1 || string(results[0].Data) != `{"r":1}` {
		t.Errorf("results = %+v, want single {\"r\":1}", results)
	}
	if results != nil && results[0].Name != "A" {
		t.Errorf("result from %q, want A", results[0].Name)
	}

	if o.Phase() != PhaseResults {
		t.Errorf("phase = %s, want %s", o.Phase(), PhaseResults)
	}

	// B carries its agent-supplied reason, C the synthesized one.
	snap := o.Snapshot()
	for _, a := range snap.Agents {
		switch a.Name {
		case "B":
			if a.Err != "fail" {
				t.Errorf("B error = %q, want agent-reported reason", a.Err)
			}
		case "C":
			if a.Err != agent.ReasonStreamEnded {
				t.Errorf("C error = %q, want %q", a.Err, agent.ReasonStreamEnded)
			}
		}
	}
}

func TestCancelAllPreservesCompletedAgents(t *testing.T) {
	srv := scriptedServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"https://fast.example": func(w http.ResponseWriter, r *http.Request) {
			writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"fast":true}}`)
		},
		"https://slow.example": func(w http.ResponseWriter, r *http.Request) {
			writeFrame(w, `{"type":"STEP","message":"working"}`)
			<-r.Context().Done()
		},
	})
	defer srv.Close()

	o := newTestOrchestrator(srv.URL, nil)
	sites := []models.Site{
		{Name: "Fast", URL: "https://fast.example"},
		{Name: "Slow One", URL: "https://slow.example"},
		{Name: "Slow Two", URL: "https://slow.example"},
	}
	if err := o.Dispatch("widgets", sites); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	// Wait for one Complete and two Running.
	waitUntil(t, func() bool {
		counts := o.StatusCounts()
		return counts[agent.StatusComplete] == 1 && counts[agent.StatusRunning] == 2
	})

	o.CancelAll()

	// Terminality is synchronous with the cancel, not with stream teardown.
	if !o.AllTerminal() {
		t.Error("AllTerminal() = false immediately after CancelAll")
	}
	counts := o.StatusCounts()
	if counts[agent.StatusComplete] != 1 || counts[agent.StatusCancelled] != 2 {
		t.Errorf("counts = %v, want Complete:1 Cancelled:2", counts)
	}

	results := o.Results()
	if len(results) != 1 || string(results[0].Data) != `{"fast":true}` {
		t.Errorf("completed result disturbed by cancel: %+v", results)
	}
	if o.Phase() != PhaseResults {
		t.Errorf("phase = %s, want %s", o.Phase(), PhaseResults)
	}
}

func TestDispatchDuplicateNamesGetDistinctIDs(t *testing.T) {
	srv := scriptedServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"https://dup.example": func(w http.ResponseWriter, r *http.Request) {
			writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"ok":1}}`)
		},
	})
	defer srv.Close()

	o := newTestOrchestrator(srv.URL, nil)
	sites := []models.Site{
		{Name: "Mirror", URL: "https://dup.example"},
		{Name: "Mirror", URL: "https://dup.example"},
		{Name: "Mirror", URL: "https://dup.example"},
	}
	if err := o.Dispatch("widgets", sites); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	waitUntil(t, o.AllTerminal)

	snap := o.Snapshot()
	if len(snap.Agents) != 3 {
		t.Fatalf("got %d agents, want 3", len(snap.Agents))
	}
	seen := make(map[string]bool)
	for _, a := range snap.Agents {
		if seen[a.ID] {
			t.Errorf("duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestResetClearsAllState(t *testing.T) {
	srv := scriptedServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"https://a.example": func(w http.ResponseWriter, r *http.Request) {
			writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"r":1}}`)
		},
		"https://slow.example": func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		},
	})
	defer srv.Close()

	o := newTestOrchestrator(srv.URL, nil)
	sites := []models.Site{
		{Name: "A", URL: "https://a.example"},
		{Name: "Slow", URL: "https://slow.example"},
	}
	if err := o.Dispatch("widgets", sites); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	waitUntil(t, func() bool {
		return o.StatusCounts()[agent.StatusComplete] == 1
	})

	o.Reset()

	snap := o.Snapshot()
	if snap.Phase != PhaseInput || len(snap.Agents) != 0 {
		t.Errorf("after reset: phase=%s agents=%d, want input/0", snap.Phase, len(snap.Agents))
	}
	if len(o.Results()) != 0 {
		t.Error("results leak across reset")
	}

	// A fresh dispatch starts from an empty map.
	if err := o.Dispatch("gadgets", sites[:1]); err != nil {
		t.Fatalf("re-dispatch: %v", err)
	}
	waitUntil(t, o.AllTerminal)
	if snap := o.Snapshot(); len(snap.Agents) != 1 || snap.Query != "gadgets" {
		t.Errorf("after re-dispatch: agents=%d query=%q", len(snap.Agents), snap.Query)
	}
}

func TestDispatchValidation(t *testing.T) {
	o := newTestOrchestrator("http://unused.invalid", nil)

	if err := o.Dispatch("   ", []models.Site{{Name: "A", URL: "https://a.example"}}); err == nil {
		t.Error("empty query accepted")
	}
	if err := o.Dispatch("widgets", nil); err == nil {
		t.Error("dispatch with no sites accepted")
	}
}

func TestRepeatSearchServedFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := scriptedServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"https://a.example": func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"r":1}}`)
		},
	})
	defer srv.Close()

	cache := NewResultCache(16, time.Minute)
	o := newTestOrchestrator(srv.URL, cache)
	sites := []models.Site{{Name: "A", URL: "https://a.example"}}

	if err := o.Dispatch("widgets", sites); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	waitUntil(t, o.AllTerminal)
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}

	o.Reset()
	if err := o.Dispatch("widgets", sites); err != nil {
		t.Fatalf("second Dispatch: %v", err)
	}
	waitUntil(t, o.AllTerminal)

	if hits.Load() != 1 {
		t.Errorf("server hits = %d after cached repeat, want 1", hits.Load())
	}
	results := o.Results()
	if len(results) != 1 || string(results[0].Data) != `{"r":1}` {
		t.Errorf("cached results = %+v", results)
	}
}
