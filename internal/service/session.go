package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/collector"
	"github.com/rmedina/placepix/internal/model"
	"github.com/rmedina/placepix/internal/provider"
	"github.com/rmedina/placepix/internal/storage"
)

// SessionState is the coarse workflow state surfaced to the operator.
type SessionState string

const (
	// StateBrowsing means a current record is active and candidates are shown.
	StateBrowsing SessionState = "browsing"
	// StateAllDone means every record in the working list has a filename.
	StateAllDone SessionState = "all_done"
	// StateNoMatches means the alphabetic filter matched zero records while
	// the unfiltered table is non-empty. Distinct from true completion.
	StateNoMatches SessionState = "no_matches"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrBusy rejects operations while a pick is still resolving.
	ErrBusy = errors.New("operation already in progress")
)

// session holds the cursor state for one operator walk through the table.
// The record list is loaded once at session start; filename updates are
// mirrored into this copy as picks succeed.
type session struct {
	id      string
	state   SessionState
	records []model.Record
	working []int // indexes into records matching the filter
	pos     int   // position within working
	filter  string
	prov    provider.Provider
	page    int
	seen    map[string]struct{}
	batch   []model.SearchResult
	total   int
	picking bool
	// generation invalidates in-flight gathers: any record, provider, or
	// page-cursor change bumps it, and a gather whose snapshot no longer
	// matches discards its result instead of applying it.
	generation uint64
}

// SessionView is the JSON-ready snapshot handlers and the CLI render.
type SessionView struct {
	ID         string               `json:"id"`
	State      SessionState         `json:"state"`
	Provider   string               `json:"provider"`
	Filter     string               `json:"filter,omitempty"`
	Record     *model.Record        `json:"record,omitempty"`
	Candidates []model.SearchResult `json:"candidates"`
	Total      int                  `json:"total"`
	Remaining  int                  `json:"remaining"`
}

// Workflow owns all operator sessions and drives the browse → pick →
// persist → advance loop. One mutex serializes session mutations; network
// calls (gathers, downloads) run outside the lock so a slow provider never
// wedges unrelated operations.
type Workflow struct {
	store     *storage.RecordStore
	registry  provider.Resolver
	collector *collector.Collector
	assigner  *AssignmentService
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewWorkflow creates the workflow service.
func NewWorkflow(
	store *storage.RecordStore,
	registry provider.Resolver,
	coll *collector.Collector,
	assigner *AssignmentService,
	logger *zap.Logger,
) *Workflow {
	return &Workflow{
		store:     store,
		registry:  registry,
		collector: coll,
		assigner:  assigner,
		logger:    logger,
		sessions:  make(map[string]*session),
	}
}

// StartSession loads the record table, applies the optional country-letter
// filter, and begins browsing at the first unassigned record.
func (w *Workflow) StartSession(ctx context.Context, providerName, filter string) (*SessionView, error) {
	prov := w.registry.Default()
	if providerName != "" {
		p, err := w.registry.ForName(providerName)
		if err != nil {
			return nil, err
		}
		prov = p
	}

	records, err := w.store.LoadAll()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	s := &session{
		id:      uuid.NewString(),
		records: records,
		prov:    prov,
	}
	s.applyFilter(filter)
	w.sessions[s.id] = s

	var gatherErr error
	if s.state == StateBrowsing {
		s.resetScan()
		gatherErr = w.gather(ctx, s)
	}

	w.logger.Info("session started",
		zap.String("session", s.id),
		zap.String("provider", prov.Name()),
		zap.String("filter", filter),
		zap.Int("records", len(records)),
	)
	return w.view(s), gatherErr
}

// Get returns the current snapshot of a session.
func (w *Workflow) Get(id string) (*SessionView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return w.view(s), nil
}

// SetProvider switches the photo service. Treated like arriving at a new
// record: batch, seen set, and page cursor all reset, then a fresh gather.
func (w *Workflow) SetProvider(ctx context.Context, id, name string) (*SessionView, error) {
	p, err := w.registry.ForName(name)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.picking {
		return w.view(s), ErrBusy
	}

	s.prov = p
	var gatherErr error
	if s.state == StateBrowsing {
		s.resetScan()
		gatherErr = w.gather(ctx, s)
	}
	return w.view(s), gatherErr
}

// SetFilter restricts the working list by first letter of country
// (case-insensitive) and resets the position to the first record of the new
// list. An empty letter clears the filter.
func (w *Workflow) SetFilter(ctx context.Context, id, letter string) (*SessionView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.picking {
		return w.view(s), ErrBusy
	}

	s.applyFilter(letter)
	var gatherErr error
	if s.state == StateBrowsing {
		s.resetScan()
		gatherErr = w.gather(ctx, s)
	}
	return w.view(s), gatherErr
}

// More advances the page cursor without clearing the seen set: the newly
// gathered results replace the candidate batch, but everything shown before
// stays excluded. After a failed gather the page cursor is unchanged, so
// More doubles as the operator's retry.
func (w *Workflow) More(ctx context.Context, id string) (*SessionView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.picking {
		return w.view(s), ErrBusy
	}
	if s.state != StateBrowsing {
		return w.view(s), fmt.Errorf("%w: no active record", ErrInvalidPick)
	}
	return w.view(s), w.gather(ctx, s)
}

// Pick downloads the chosen candidate, persists the filename, and advances
// to the next unassigned record. While the pick resolves, further picks for
// this session are rejected with ErrBusy. On failure the session stays on
// the same record so the operator can retry.
func (w *Workflow) Pick(ctx context.Context, id, imageID string) (*SessionView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.picking {
		return w.view(s), ErrBusy
	}
	if s.state != StateBrowsing {
		return w.view(s), fmt.Errorf("%w: no active record to assign", ErrInvalidPick)
	}

	var chosen *model.SearchResult
	for i := range s.batch {
		if s.batch[i].ID == imageID {
			chosen = &s.batch[i]
			break
		}
	}
	if chosen == nil {
		return w.view(s), fmt.Errorf("%w: image %q is not among the current candidates", ErrInvalidPick, imageID)
	}

	recIdx := s.working[s.pos]
	req := PickRequest{
		City:     s.records[recIdx].City,
		Country:  s.records[recIdx].Country,
		Provider: s.prov.Name(),
		Image:    *chosen,
	}

	s.picking = true
	w.mu.Unlock()
	filename, err := w.assigner.Assign(ctx, req)
	w.mu.Lock()
	s.picking = false

	if err != nil {
		return w.view(s), err
	}

	s.records[recIdx].Filename = filename
	return w.view(s), w.advance(ctx, s)
}

// Skip moves to the next unassigned record without persisting anything,
// regardless of candidate-gathering state.
func (w *Workflow) Skip(ctx context.Context, id string) (*SessionView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.picking {
		return w.view(s), ErrBusy
	}
	if s.state != StateBrowsing {
		return w.view(s), nil
	}
	return w.view(s), w.advanceFrom(ctx, s, s.pos+1)
}

// applyFilter recomputes the working list and the session state.
func (s *session) applyFilter(letter string) {
	s.filter = letter
	s.working = s.working[:0]
	for i, r := range s.records {
		if r.MatchesLetter(letter) {
			s.working = append(s.working, i)
		}
	}

	if len(s.working) == 0 && letter != "" && len(s.records) > 0 {
		s.state = StateNoMatches
		return
	}

	// Position on the first record still lacking a filename.
	for pos, idx := range s.working {
		if !s.records[idx].Assigned() {
			s.pos = pos
			s.state = StateBrowsing
			return
		}
	}
	s.state = StateAllDone
}

// resetScan clears the per-record candidate state: fresh page cursor, empty
// seen set, no batch. Called on record entry, provider change, and filter
// change. Bumps the generation so stale gathers are discarded.
func (s *session) resetScan() {
	s.page = 1
	s.seen = make(map[string]struct{})
	s.batch = nil
	s.total = 0
	s.generation++
}

// advance enters browsing on the next unassigned record after the current
// one, or lands in AllDone.
func (w *Workflow) advance(ctx context.Context, s *session) error {
	return w.advanceFrom(ctx, s, s.pos+1)
}

func (w *Workflow) advanceFrom(ctx context.Context, s *session, from int) error {
	for pos := from; pos < len(s.working); pos++ {
		if !s.records[s.working[pos]].Assigned() {
			s.pos = pos
			s.state = StateBrowsing
			s.resetScan()
			return w.gather(ctx, s)
		}
	}
	s.state = StateAllDone
	s.batch = nil
	s.generation++
	return nil
}

// gather runs one collection attempt for the current record. The workflow
// lock is released around the network call; the generation snapshot decides
// whether the result still applies when it comes back. A gather error leaves
// the batch empty and the page cursor untouched: "no images available now",
// recoverable via More.
func (w *Workflow) gather(ctx context.Context, s *session) error {
	gen := s.generation
	prov := s.prov
	query := s.records[s.working[s.pos]].Query()
	startPage := s.page
	seen := s.seen

	w.mu.Unlock()
	batch, err := w.collector.Gather(ctx, prov, query, startPage, seen)
	w.mu.Lock()

	if gen != s.generation {
		w.logger.Debug("discarding stale gather",
			zap.String("session", s.id),
			zap.String("query", query),
		)
		return nil
	}

	if err != nil {
		s.batch = nil
		return err
	}

	s.batch = batch.Results
	s.seen = batch.Seen
	s.page = batch.NextPage
	s.total = batch.Total
	return nil
}

// view snapshots a session for callers. Candidates are copied so handlers
// never alias the live batch.
func (w *Workflow) view(s *session) *SessionView {
	v := &SessionView{
		ID:         s.id,
		State:      s.state,
		Provider:   s.prov.Name(),
		Filter:     s.filter,
		Candidates: append([]model.SearchResult(nil), s.batch...),
		Total:      s.total,
	}
	for _, idx := range s.working {
		if !s.records[idx].Assigned() {
			v.Remaining++
		}
	}
	if s.state == StateBrowsing {
		rec := s.records[s.working[s.pos]]
		v.Record = &rec
	}
	return v
}
