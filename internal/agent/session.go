package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/sitescout-io/sitescout/internal/stream"
)

// DefaultIdleTimeout bounds how long a session waits between bytes before
// treating the stream as dead. The protocol has no heartbeat, so this is
// the only liveness guard.
const DefaultIdleTimeout = 60 * time.Second

// ReasonStreamEnded is the synthesized failure reason for a stream that
// closed without a terminal event.
const ReasonStreamEnded = "stream ended unexpectedly"

// UpdateKind identifies what an Update carries.
type UpdateKind int

// Update kinds. Complete, Error, and Cancelled are terminal and mutually
// exclusive; exactly one of them is delivered per session, last, after
// which the channel closes.
const (
	UpdateStep UpdateKind = iota
	UpdatePreviewURL
	UpdateComplete
	UpdateError
	UpdateCancelled
)

// Update is one state change delivered to the session owner.
type Update struct {
	AgentID    string
	Kind       UpdateKind
	Step       string
	PreviewURL string
	Result     json.RawMessage
	Err        string
}

// Options configure one streaming session.
type Options struct {
	ID        string
	Name      string // display name (site name)
	Endpoint  string // automation service URL
	APIKey    string
	TargetURL string // site the remote agent should drive
	Goal      string // natural-language goal for the remote agent

	IdleTimeout time.Duration // no bytes for this long = transport fault
	Timeout     time.Duration // overall bound for the whole run; 0 = none
	Client      *http.Client  // nil = http.DefaultClient
}

// runRequest is the JSON body of the automation run request.
type runRequest struct {
	URL  string `json:"url"`
	Goal string `json:"goal"`
}

// Session owns one streaming connection to the automation service: the
// request, its cancellation handle, and the state machine fed by the
// decoded events. All stream handling happens on the session's own
// goroutine; owners observe it through Updates. Side effects never leave
// the session.
type Session struct {
	opts      Options
	startedAt time.Time

	mu      sync.Mutex // guards machine and emitted
	machine *Machine
	emitted bool // terminal update already sent by the run loop

	ctx    context.Context
	cancel context.CancelFunc

	updates chan Update
	done    chan struct{}
	stats   stream.DecodeStats
}

func newSession(opts Options) *Session {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		opts:      opts,
		startedAt: time.Now().UTC(),
		machine:   NewMachine(),
		ctx:       ctx,
		cancel:    cancel,
		updates:   make(chan Update, 64),
		done:      make(chan struct{}),
	}
}

// Start opens the streaming connection and returns immediately. The stream
// is consumed on the session's own goroutine until a terminal state is
// reached; the session always terminates, even if the service hangs or the
// stream closes without a terminal event.
func Start(opts Options) *Session {
	s := newSession(opts)
	go s.run()
	return s
}

// StartCached returns a session that completes immediately with a result
// served from the cache, without opening a connection.
func StartCached(opts Options, result json.RawMessage) *Session {
	s := newSession(opts)
	s.machine.CompleteWith(result)
	s.emitted = true
	go func() {
		s.updates <- Update{AgentID: s.opts.ID, Kind: UpdateComplete, Result: result}
		close(s.updates)
		close(s.done)
	}()
	return s
}

// Updates returns the typed update channel. It is closed after the terminal
// update has been delivered.
func (s *Session) Updates() <-chan Update { return s.updates }

// Done returns a channel closed once the session has fully finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// Cancel aborts the underlying connection and moves the session to the
// Cancelled state. Safe to call concurrently and repeatedly; a cancel
// issued after a terminal state is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	ch := s.machine.Cancel()
	s.mu.Unlock()
	if ch.Cancelled {
		s.logf("cancelled")
	}
	s.cancel()
}

// ID returns the stable agent id.
func (s *Session) ID() string { return s.opts.ID }

// Name returns the display name.
func (s *Session) Name() string { return s.opts.Name }

// TargetURL returns the site the remote agent was pointed at.
func (s *Session) TargetURL() string { return s.opts.TargetURL }

// Goal returns the goal text sent to the remote agent.
func (s *Session) Goal() string { return s.opts.Goal }

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Status()
}

// StepMessage returns the latest progress text.
func (s *Session) StepMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.StepMessage()
}

// PreviewURL returns the captured live-view URL, if any.
func (s *Session) PreviewURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.PreviewURL()
}

// Result returns the captured result payload for a Complete session.
func (s *Session) Result() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Result()
}

// ErrReason returns the captured failure reason for an Error session.
func (s *Session) ErrReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.ErrReason()
}

// Log returns a copy of the ordered event log.
func (s *Session) Log() []stream.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Log()
}

// run consumes the stream and guarantees exactly one terminal update.
func (s *Session) run() {
	err := s.streamOnce()

	s.mu.Lock()
	if !s.machine.Status().Terminal() {
		switch {
		case err != nil:
			s.machine.Fail(fmt.Sprintf("transport failure: %v", err))
		default:
			s.machine.Fail(ReasonStreamEnded)
		}
	}
	status := s.machine.Status()
	reason := s.machine.ErrReason()
	result := s.machine.Result()
	emitted := s.emitted
	s.mu.Unlock()

	if !emitted {
		switch status {
		case StatusComplete:
			s.updates <- Update{AgentID: s.opts.ID, Kind: UpdateComplete, Result: result}
		case StatusCancelled:
			s.updates <- Update{AgentID: s.opts.ID, Kind: UpdateCancelled}
		case StatusError:
			s.logf("failed: %s", reason)
			s.updates <- Update{AgentID: s.opts.ID, Kind: UpdateError, Err: reason}
		}
	}

	if s.stats.Malformed > 0 || s.stats.Noise > 0 {
		s.logf("stream closed: %d events, %d malformed, %d noise lines skipped",
			s.stats.Events, s.stats.Malformed, s.stats.Noise)
	}

	s.cancel()
	close(s.updates)
	close(s.done)
}

// streamOnce performs the request and feeds the body through the framer,
// decoder, and state machine. A nil return with a non-terminal machine
// means the stream ended without a terminal event.
func (s *Session) streamOnce() error {
	s.mu.Lock()
	if s.machine.Status().Terminal() { // cancelled before the request went out
		s.mu.Unlock()
		return nil
	}
	s.machine.Connecting()
	s.mu.Unlock()

	body, err := json.Marshal(runRequest{URL: s.opts.TargetURL, Goal: s.opts.Goal})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-API-Key", s.opts.APIKey)

	if s.opts.Timeout > 0 {
		overall := time.AfterFunc(s.opts.Timeout, func() {
			s.failAsync(fmt.Sprintf("agent timed out after %s", s.opts.Timeout))
		})
		defer overall.Stop()
	}

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("automation service returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	idle := time.AfterFunc(s.opts.IdleTimeout, func() {
		s.failAsync(fmt.Sprintf("no data received for %s", s.opts.IdleTimeout))
	})
	defer idle.Stop()

	var framer stream.Framer
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			idle.Reset(s.opts.IdleTimeout)
			for _, line := range framer.Push(buf[:n]) {
				if s.handleLine(line) {
					return nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				if dropped := framer.Close(); dropped > 0 {
					s.logf("discarding %d-byte partial frame at stream end", dropped)
				}
				return nil
			}
			return err
		}
	}
}

// handleLine decodes one line, applies it to the machine, and emits the
// resulting updates. Returns true once the session is terminal.
func (s *Session) handleLine(line string) bool {
	ev, ok := stream.DecodeLine(line, &s.stats)
	if !ok {
		return false
	}

	s.mu.Lock()
	ch := s.machine.Apply(ev)
	if ch.Completed || ch.Failed {
		s.emitted = true
	}
	step := s.machine.StepMessage()
	preview := s.machine.PreviewURL()
	result := s.machine.Result()
	reason := s.machine.ErrReason()
	terminal := s.machine.Status().Terminal()
	s.mu.Unlock()

	if ch.PreviewURL {
		s.updates <- Update{AgentID: s.opts.ID, Kind: UpdatePreviewURL, PreviewURL: preview}
	}
	if ch.Step {
		s.updates <- Update{AgentID: s.opts.ID, Kind: UpdateStep, Step: step}
	}
	if ch.Completed {
		s.updates <- Update{AgentID: s.opts.ID, Kind: UpdateComplete, Result: result}
	}
	if ch.Failed {
		s.logf("agent reported failure: %s", reason)
		s.updates <- Update{AgentID: s.opts.ID, Kind: UpdateError, Err: reason}
	}

	return terminal
}

// failAsync records a transport fault from a watchdog timer and unblocks
// the pending read. The run loop delivers the terminal update.
func (s *Session) failAsync(reason string) {
	s.mu.Lock()
	ch := s.machine.Fail(reason)
	s.mu.Unlock()
	if ch.Failed {
		s.logf("%s", reason)
	}
	s.cancel()
}

func (s *Session) logf(format string, args ...interface{}) {
	prefix := fmt.Sprintf("[agent:%s] ", s.opts.ID)
	log.Printf(prefix+format, args...)
}
