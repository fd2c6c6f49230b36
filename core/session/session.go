// Package session holds the dashboard's transient state: the last-good
// snapshot and last error per view, the queue view mode and the team
// selected for the history pane. One Session serves one dashboard instance;
// nothing is process-global.
package session

import (
	"sync"

	"github.com/rmaia/dispatchboard/core/model"
)

// View identifies one independently refreshed data view.
type View string

const (
	ViewQueue   View = "queue"
	ViewTeams   View = "teams"
	ViewAreas   View = "areas"
	ViewRegions View = "regions"
)

// ViewMode selects which backend ordering the queue view shows.
type ViewMode string

const (
	// ModePrioritized shows the backend-ranked queue.
	ModePrioritized ViewMode = "prioritized"
	// ModeInsertion shows calls in arrival order.
	ModeInsertion ViewMode = "insertion"
)

// Snapshot pairs a view's last-good data with its last refresh error. Err is
// non-nil when the most recent refresh failed; Data then still carries the
// previous good state.
type Snapshot[T any] struct {
	Data T
	Err  error
	// Loaded is false until the first successful refresh.
	Loaded bool
}

func (s *Snapshot[T]) apply(data T) {
	s.Data = data
	s.Err = nil
	s.Loaded = true
}

func (s *Snapshot[T]) fail(err error) {
	s.Err = err
}

// Session is safe for concurrent use. Snapshots are replaced wholesale;
// overlapping refreshes resolve to last write wins per view.
type Session struct {
	mu      sync.RWMutex
	mode    ViewMode
	queue   Snapshot[[]model.Emergency]
	teams   Snapshot[[]model.Team]
	areas   Snapshot[[]model.AffectedArea]
	regions Snapshot[model.Region]

	selectedTeam int
	actions      Snapshot[[]model.ActionHistoryEntry]
}

// New creates a session showing the prioritized queue.
func New() *Session {
	return &Session{mode: ModePrioritized}
}

// Mode returns the current queue view mode.
func (s *Session) Mode() ViewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode stores the queue view mode and reports whether it changed.
func (s *Session) SetMode(mode ViewMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == mode {
		return false
	}
	s.mode = mode
	return true
}

// ApplyQueue replaces the queue snapshot.
func (s *Session) ApplyQueue(calls []model.Emergency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.apply(calls)
}

// FailQueue records a queue refresh failure, keeping the last-good data.
func (s *Session) FailQueue(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.fail(err)
}

// Queue returns the queue snapshot.
func (s *Session) Queue() Snapshot[[]model.Emergency] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue
}

// ApplyTeams replaces the team snapshot.
func (s *Session) ApplyTeams(teams []model.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams.apply(teams)
}

// FailTeams records a team refresh failure.
func (s *Session) FailTeams(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams.fail(err)
}

// Teams returns the team snapshot.
func (s *Session) Teams() Snapshot[[]model.Team] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teams
}

// ApplyAreas replaces the affected-area snapshot.
func (s *Session) ApplyAreas(areas []model.AffectedArea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas.apply(areas)
}

// FailAreas records an area refresh failure.
func (s *Session) FailAreas(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas.fail(err)
}

// Areas returns the affected-area snapshot.
func (s *Session) Areas() Snapshot[[]model.AffectedArea] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.areas
}

// ApplyRegions replaces the region tree snapshot.
func (s *Session) ApplyRegions(root model.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions.apply(root)
}

// FailRegions records a region refresh failure.
func (s *Session) FailRegions(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions.fail(err)
}

// Regions returns the region tree snapshot.
func (s *Session) Regions() Snapshot[model.Region] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.regions
}

// SelectTeam stores the team whose action history is displayed.
func (s *Session) SelectTeam(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTeam = id
}

// SelectedTeam returns the team id of the history pane, 0 when none.
func (s *Session) SelectedTeam() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTeam
}

// ApplyActions replaces the action history snapshot.
func (s *Session) ApplyActions(actions []model.ActionHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions.apply(actions)
}

// FailActions records an action history refresh failure.
func (s *Session) FailActions(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions.fail(err)
}

// Actions returns the action history snapshot.
func (s *Session) Actions() Snapshot[[]model.ActionHistoryEntry] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actions
}
