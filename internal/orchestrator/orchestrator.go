// Package orchestrator fans a user query out to one streaming automation
// agent per site and aggregates their progress into a single view.
package orchestrator

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sitescout-io/sitescout/internal/agent"
	"github.com/sitescout-io/sitescout/internal/models"
	"github.com/sitescout-io/sitescout/internal/stream"
	"github.com/sitescout-io/sitescout/internal/telemetry"
)

// Phase is the search lifecycle stage: Input until a dispatch, Searching
// while any agent is live, Results once every agent is terminal. Reset
// returns to Input.
type Phase string

// Phases.
const (
	PhaseInput     Phase = "input"
	PhaseSearching Phase = "searching"
	PhaseResults   Phase = "results"
)

// GoalBuilder supplies per-agent request parameters for a site. The
// orchestrator treats it as opaque.
type GoalBuilder func(site models.Site, query string) (targetURL, goal string)

// Options configure an Orchestrator.
type Options struct {
	Endpoint    string
	APIKey      string
	IdleTimeout time.Duration
	Timeout     time.Duration
	Client      *http.Client // nil = http.DefaultClient

	Goals     GoalBuilder       // required
	Cache     *ResultCache      // optional; nil disables caching
	Telemetry *telemetry.Client // optional; nil disables analytics
}

// Result is one completed agent's captured payload.
type Result struct {
	AgentID string
	Name    string
	Data    json.RawMessage
}

// AgentView is a read-only snapshot of one agent for presentation.
type AgentView struct {
	ID          string
	Name        string
	TargetURL   string
	Status      agent.Status
	StepMessage string
	PreviewURL  string
	Log         []stream.Event
	Result      json.RawMessage
	Err         string
}

// Snapshot is a read-only view of the whole search for the presentation
// layer. Agents appear in dispatch order.
type Snapshot struct {
	Phase      Phase
	Query      string
	StartedAt  time.Time
	FinishedAt time.Time
	Agents     []AgentView
	Counts     map[agent.Status]int
}

// Orchestrator owns the full set of agent sessions for one user query at a
// time. Sessions are mutated only through their own streams or through the
// cancellation handles held here; everything else reads snapshots.
type Orchestrator struct {
	opts Options

	mu         sync.RWMutex
	query      string
	order      []string // agent ids in dispatch order
	sessions   map[string]*agent.Session
	startedAt  time.Time
	finishedAt time.Time

	notify chan struct{}
}

// New creates an orchestrator. The site catalog is supplied per dispatch,
// so a catalog reload between searches takes effect naturally.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		opts:     opts,
		sessions: make(map[string]*agent.Session),
		notify:   make(chan struct{}, 1),
	}
}

// Updates returns a coalescing change-notification channel. Receivers
// should treat a tick as "take a fresh snapshot"; intermediate states may
// be skipped.
func (o *Orchestrator) Updates() <-chan struct{} { return o.notify }

// Dispatch validates the query, builds one (target, goal) pair per site,
// and starts one agent session per pair. Display order equals creation
// order; sessions themselves start independently.
func (o *Orchestrator) Dispatch(query string, sites []models.Site) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if len(sites) == 0 {
		return fmt.Errorf("no sites to search")
	}

	o.mu.Lock()
	for _, sess := range o.sessions {
		if !sess.Status().Terminal() {
			o.mu.Unlock()
			return fmt.Errorf("a search is already in progress")
		}
	}

	o.query = query
	o.startedAt = time.Now().UTC()
	o.finishedAt = time.Time{}
	o.order = nil
	o.sessions = make(map[string]*agent.Session)

	for _, site := range sites {
		target, goal := o.opts.Goals(site, query)
		opts := agent.Options{
			ID:          newAgentID(site.Name),
			Name:        site.Name,
			Endpoint:    o.opts.Endpoint,
			APIKey:      o.opts.APIKey,
			TargetURL:   target,
			Goal:        goal,
			IdleTimeout: o.opts.IdleTimeout,
			Timeout:     o.opts.Timeout,
			Client:      o.opts.Client,
		}

		var sess *agent.Session
		if cached, ok := o.opts.Cache.Get(target, goal); ok {
			log.Printf("[orchestrator] %s served from cache", site.Name)
			sess = agent.StartCached(opts, cached)
		} else {
			sess = agent.Start(opts)
		}

		o.order = append(o.order, opts.ID)
		o.sessions[opts.ID] = sess
		go o.consume(sess)
	}
	n := len(o.order)
	o.mu.Unlock()

	log.Printf("[orchestrator] dispatched %d agents for %q", n, query)
	o.opts.Telemetry.Capture("search_dispatched", map[string]interface{}{"agents": n})
	o.notifyChange()
	return nil
}

// consume drains one session's updates into the aggregate view. It is the
// only goroutine that reacts to this agent's stream, so no two consumers
// ever touch the same slot.
func (o *Orchestrator) consume(sess *agent.Session) {
	for u := range sess.Updates() {
		if u.Kind == agent.UpdateComplete {
			o.opts.Cache.Add(sess.TargetURL(), sess.Goal(), u.Result)
		}
		o.notifyChange()
	}

	o.mu.Lock()
	// A Reset may have replaced the map while this stream drained.
	if curr, ok := o.sessions[sess.ID()]; !ok || curr != sess {
		o.mu.Unlock()
		return
	}
	finished := o.allTerminalLocked() && o.finishedAt.IsZero()
	if finished {
		o.finishedAt = time.Now().UTC()
	}
	counts := o.countsLocked()
	elapsed := time.Since(o.startedAt)
	o.mu.Unlock()

	if finished {
		log.Printf("[orchestrator] search finished in %s: %d complete, %d error, %d cancelled",
			elapsed.Round(time.Millisecond),
			counts[agent.StatusComplete], counts[agent.StatusError], counts[agent.StatusCancelled])
		o.opts.Telemetry.Capture("search_completed", map[string]interface{}{
			"complete":   counts[agent.StatusComplete],
			"error":      counts[agent.StatusError],
			"cancelled":  counts[agent.StatusCancelled],
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
	o.notifyChange()
}

// CancelAll cancels every non-terminal session. Terminal sessions are
// untouched; their captured results and errors survive.
func (o *Orchestrator) CancelAll() {
	o.mu.RLock()
	sessions := make([]*agent.Session, 0, len(o.order))
	for _, id := range o.order {
		sessions = append(sessions, o.sessions[id])
	}
	o.mu.RUnlock()

	for _, sess := range sessions {
		sess.Cancel() // no-op on terminal sessions
	}
	o.notifyChange()
}

// Reset cancels all sessions, discards the agent map, and returns the
// phase to Input. A subsequent Dispatch starts from an empty map.
func (o *Orchestrator) Reset() {
	o.CancelAll()

	o.mu.Lock()
	o.query = ""
	o.order = nil
	o.sessions = make(map[string]*agent.Session)
	o.startedAt = time.Time{}
	o.finishedAt = time.Time{}
	o.mu.Unlock()

	o.notifyChange()
}

// Phase derives the lifecycle stage from session state: no sessions means
// Input, all terminal means Results, otherwise Searching. Nothing needs to
// remember to flip it.
func (o *Orchestrator) Phase() Phase {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.phaseLocked()
}

func (o *Orchestrator) phaseLocked() Phase {
	if len(o.sessions) == 0 {
		return PhaseInput
	}
	if o.allTerminalLocked() {
		return PhaseResults
	}
	return PhaseSearching
}

// AllTerminal reports whether every session has reached Complete, Error,
// or Cancelled.
func (o *Orchestrator) AllTerminal() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.sessions) > 0 && o.allTerminalLocked()
}

func (o *Orchestrator) allTerminalLocked() bool {
	for _, sess := range o.sessions {
		if !sess.Status().Terminal() {
			return false
		}
	}
	return true
}

// StatusCounts returns the number of agents in each status.
func (o *Orchestrator) StatusCounts() map[agent.Status]int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.countsLocked()
}

func (o *Orchestrator) countsLocked() map[agent.Status]int {
	counts := make(map[agent.Status]int)
	for _, sess := range o.sessions {
		counts[sess.Status()]++
	}
	return counts
}

// Results returns the captured payloads of Complete sessions, in dispatch
// order. Error and Cancelled sessions contribute nothing here but remain
// visible in snapshots.
func (o *Orchestrator) Results() []Result {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var results []Result
	for _, id := range o.order {
		sess := o.sessions[id]
		if sess.Status() != agent.StatusComplete {
			continue
		}
		results = append(results, Result{
			AgentID: sess.ID(),
			Name:    sess.Name(),
			Data:    sess.Result(),
		})
	}
	return results
}

// Snapshot returns a read-only view of the whole search for presentation.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := Snapshot{
		Phase:      o.phaseLocked(),
		Query:      o.query,
		StartedAt:  o.startedAt,
		FinishedAt: o.finishedAt,
		Counts:     o.countsLocked(),
		Agents:     make([]AgentView, 0, len(o.order)),
	}
	for _, id := range o.order {
		sess := o.sessions[id]
		snap.Agents = append(snap.Agents, AgentView{
			ID:          sess.ID(),
			Name:        sess.Name(),
			TargetURL:   sess.TargetURL(),
			Status:      sess.Status(),
			StepMessage: sess.StepMessage(),
			PreviewURL:  sess.PreviewURL(),
			Log:         sess.Log(),
			Result:      sess.Result(),
			Err:         sess.ErrReason(),
		})
	}
	return snap
}

// notifyChange coalesces change notifications: a slow receiver sees at
// most one pending tick.
func (o *Orchestrator) notifyChange() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// newAgentID builds a stable, collision-free agent id from a display name.
// Duplicate names get distinct ids via the random suffix.
func newAgentID(name string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	if norm == "" {
		norm = "agent"
	}
	return norm + "-" + uuid.NewString()[:8]
}
