// Package state keeps an in-memory snapshot of the family's children,
// balances, tasks and rewards so summary reads never fan out to the
// database. Mutations are staged optimistically and either committed,
// which triggers an authoritative reload, or rolled back to the exact
// pre-mutation snapshot.
package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/model"
)

// debounceWindow coalesces bursts of snapshot changes into one disk write.
const debounceWindow = 500 * time.Millisecond

// Snapshot is the client-facing view of a family. All fields are value
// copies; readers never share slices with the live snapshot.
type Snapshot struct {
	Balances  []model.PointBalance `json:"balances"`
	Tasks     []model.Task         `json:"tasks"`
	Rewards   []model.Reward       `json:"rewards"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ForFamily carves out one family's slice of the snapshot: balances and
// tasks for the family's children, rewards owned by the parent.
func (s *Snapshot) ForFamily(familyID int64, childIDs map[int64]bool) *Snapshot {
	out := &Snapshot{UpdatedAt: s.UpdatedAt}
	for _, b := range s.Balances {
		if childIDs[b.ChildID] {
			out.Balances = append(out.Balances, b)
		}
	}
	for _, t := range s.Tasks {
		if childIDs[t.ChildID] {
			out.Tasks = append(out.Tasks, t)
		}
	}
	for _, r := range s.Rewards {
		if r.ParentID == familyID {
			out.Rewards = append(out.Rewards, r)
		}
	}
	return out
}

func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{UpdatedAt: s.UpdatedAt}
	c.Balances = append([]model.PointBalance(nil), s.Balances...)
	c.Tasks = append([]model.Task(nil), s.Tasks...)
	c.Rewards = append([]model.Reward(nil), s.Rewards...)
	return c
}

// Loader produces an authoritative snapshot from the stores. Balances
// must come from the ledger recompute, never from staged increments.
type Loader func() (*Snapshot, error)

type Synchronizer struct {
	mu      sync.Mutex
	current *Snapshot
	load    Loader
	logger  *slog.Logger

	persistPath string
	timer       *time.Timer
}

func NewSynchronizer(load Loader, persistPath string, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		current:     &Snapshot{},
		load:        load,
		persistPath: persistPath,
		logger:      logger.With("component", "state"),
	}
}

// Current returns a copy of the snapshot, staged mutations included.
func (s *Synchronizer) Current() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Staged is a pending mutation. Exactly one of Commit or Rollback should
// be called.
type Staged struct {
	sync *Synchronizer
	prev *Snapshot
	done bool
}

// Stage applies mutate to a copy of the snapshot and makes the result
// visible immediately. The returned handle decides its fate: Commit
// replaces it with an authoritative reload, Rollback restores the copy
// taken before the mutation.
func (s *Synchronizer) Stage(mutate func(*Snapshot)) *Staged {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current
	next := prev.clone()
	mutate(next)
	next.UpdatedAt = time.Now().UTC()
	s.current = next
	s.schedulePersistLocked()

	return &Staged{sync: s, prev: prev}
}

// Commit accepts the staged mutation and refreshes from the stores. The
// tentative state is replaced wholesale; nothing optimistic survives.
func (st *Staged) Commit() error {
	if st.done {
		return nil
	}
	st.done = true
	return st.sync.Refresh()
}

// Rollback discards the staged mutation and restores the pre-mutation
// snapshot.
func (st *Staged) Rollback() {
	if st.done {
		return
	}
	st.done = true

	st.sync.mu.Lock()
	st.sync.current = st.prev
	st.sync.schedulePersistLocked()
	st.sync.mu.Unlock()
}

// Refresh reloads the snapshot from the authoritative stores.
func (s *Synchronizer) Refresh() error {
	fresh, err := s.load()
	if err != nil {
		s.logger.Error("snapshot refresh failed", "error", err)
		return err
	}
	fresh.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.current = fresh
	s.schedulePersistLocked()
	s.mu.Unlock()
	return nil
}

// schedulePersistLocked arms or rearms the debounce timer. Callers hold mu.
func (s *Synchronizer) schedulePersistLocked() {
	if s.persistPath == "" {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceWindow, func() {
		if err := s.Flush(); err != nil {
			s.logger.Error("snapshot persist failed", "error", err)
		}
	})
}
