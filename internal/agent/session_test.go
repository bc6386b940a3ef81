package agent

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// collectUpdates drains a session's update channel until it closes,
// guarding against the session hanging forever.
func collectUpdates(t *testing.T, s *Session) []Update {
	t.Helper()
	var updates []Update
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-s.Updates():
			if !ok {
				return updates
			}
			updates = append(updates, u)
		case <-timeout:
			t.Fatalf("session did not finish; updates so far: %+v", updates)
		}
	}
}

func writeFrame(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func testOptions(endpoint string) Options {
	return Options{
		ID:          "test-agent",
		Name:        "Test Site",
		Endpoint:    endpoint,
		APIKey:      "key",
		TargetURL:   "https://shop.example",
		Goal:        "find the thing",
		IdleTimeout: 2 * time.Second,
	}
}

func TestSessionCompleteFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "key" {
			t.Errorf("missing API key header")
		}
		writeFrame(w, `{"type":"STREAMING_URL","streamingUrl":"https://view.example/live"}`)
		writeFrame(w, `{"type":"STEP","message":"opening page"}`)
		writeFrame(w, `{"type":"STEP","message":"extracting results"}`)
		writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"items":[1,2]}}`)
	}))
	defer srv.Close()

	s := Start(testOptions(srv.URL))
	updates := collectUpdates(t, s)

	wantKinds := []UpdateKind{UpdatePreviewURL, UpdateStep, UpdateStep, UpdateComplete}
	if len(updates) != len(wantKinds) {
		t.Fatalf("got %d updates %+v, want %d", len(updates), updates, len(wantKinds))
	}
	for i, k := range wantKinds {
		if updates[i].Kind != k {
			t.Errorf("update %d kind = %v, want %v", i, updates[i].Kind, k)
		}
	}

	if s.Status() != StatusComplete {
		t.Errorf("status = %s, want %s", s.Status(), StatusComplete)
	}
	if string(s.Result()) != `{"items":[1,2]}` {
		t.Errorf("result = %s", s.Result())
	}
	if s.PreviewURL() != "https://view.example/live" {
		t.Errorf("preview URL = %q", s.PreviewURL())
	}
	if len(s.Log()) != 4 {
		t.Errorf("log length = %d, want 4", len(s.Log()))
	}
}

func TestSessionAgentReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrame(w, `{"type":"STEP","message":"opening page"}`)
		writeFrame(w, `{"type":"ERROR","message":"site blocked automation"}`)
	}))
	defer srv.Close()

	s := Start(testOptions(srv.URL))
	updates := collectUpdates(t, s)

	last := updates[len(updates)-1]
	if last.Kind != UpdateError || last.Err != "site blocked automation" {
		t.Errorf("terminal update = %+v, want agent error", last)
	}
	if s.Status() != StatusError {
		t.Errorf("status = %s, want %s", s.Status(), StatusError)
	}
}

func TestSessionStreamEndsWithoutTerminalEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrame(w, `{"type":"STEP","message":"working"}`)
		// Handler returns: the stream closes with no COMPLETE or ERROR.
	}))
	defer srv.Close()

	s := Start(testOptions(srv.URL))
	updates := collectUpdates(t, s)

	last := updates[len(updates)-1]
	if last.Kind != UpdateError || last.Err != ReasonStreamEnded {
		t.Errorf("terminal update = %+v, want %q", last, ReasonStreamEnded)
	}
}

func TestSessionNonSuccessResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	s := Start(testOptions(srv.URL))
	updates := collectUpdates(t, s)

	last := updates[len(updates)-1]
	if last.Kind != UpdateError {
		t.Fatalf("terminal update = %+v, want transport error", last)
	}
	if want := "402"; !strings.Contains(last.Err, want) {
		t.Errorf("error %q does not mention response status %s", last.Err, want)
	}
}

func TestSessionCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrame(w, `{"type":"STEP","message":"working"}`)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	s := Start(testOptions(srv.URL))

	// Wait for the first step so the session is mid-stream.
	u := <-s.Updates()
	if u.Kind != UpdateStep {
		t.Fatalf("first update = %+v, want step", u)
	}

	s.Cancel()
	s.Cancel() // idempotent

	// Status flips synchronously, before the stream loop unwinds.
	if s.Status() != StatusCancelled {
		t.Errorf("status after Cancel = %s, want %s", s.Status(), StatusCancelled)
	}

	updates := collectUpdates(t, s)
	last := updates[len(updates)-1]
	if last.Kind != UpdateCancelled {
		t.Errorf("terminal update = %+v, want cancelled", last)
	}
	// Cancellation is caller-initiated: no error reason is surfaced.
	if s.ErrReason() != "" {
		t.Errorf("cancelled session has error reason %q", s.ErrReason())
	}
}

func TestSessionCancelAfterCompleteIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"r":1}}`)
	}))
	defer srv.Close()

	s := Start(testOptions(srv.URL))
	collectUpdates(t, s)

	s.Cancel()
	if s.Status() != StatusComplete || string(s.Result()) != `{"r":1}` {
		t.Errorf("late cancel altered session: status=%s result=%s", s.Status(), s.Result())
	}
}

func TestSessionIdleTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrame(w, `{"type":"STEP","message":"working"}`)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	opts := testOptions(srv.URL)
	opts.IdleTimeout = 100 * time.Millisecond
	s := Start(opts)
	updates := collectUpdates(t, s)

	last := updates[len(updates)-1]
	if last.Kind != UpdateError {
		t.Fatalf("terminal update = %+v, want idle-timeout error", last)
	}
	if !strings.Contains(last.Err, "no data received") {
		t.Errorf("error %q does not describe the idle timeout", last.Err)
	}
}

func TestSessionMalformedFramesAreSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ": keepalive comment\n\n")
		writeFrame(w, `{"type":"STEP","message":"one"}`)
		fmt.Fprint(w, "data: {broken\n\n")
		writeFrame(w, `{"type":"COMPLETE","status":"COMPLETED","resultJson":{"ok":true}}`)
	}))
	defer srv.Close()

	s := Start(testOptions(srv.URL))
	updates := collectUpdates(t, s)

	wantKinds := []UpdateKind{UpdateStep, UpdateComplete}
	if len(updates) != len(wantKinds) {
		t.Fatalf("got %d updates %+v, want %d", len(updates), updates, len(wantKinds))
	}
}

func TestStartCached(t *testing.T) {
	s := StartCached(testOptions("http://unused.invalid"), []byte(`{"cached":true}`))
	updates := collectUpdates(t, s)

	if len(updates) != 1 || updates[0].Kind != UpdateComplete {
		t.Fatalf("updates = %+v, want single complete", updates)
	}
	if s.Status() != StatusComplete || string(s.Result()) != `{"cached":true}` {
		t.Errorf("cached session: status=%s result=%s", s.Status(), s.Result())
	}
}
