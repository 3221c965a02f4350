// Package points derives child point balances from approved tasks and
// reward claims. Balances are never stored: every mutation ends in a
// recompute from source rows, so a cached value can only ever be stale,
// never wrong after reconciliation.
package points

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/store"
)

// ErrInsufficientPoints is returned when a debit would take a child's
// spendable balance below zero.
var ErrInsufficientPoints = errors.New("insufficient points")

type Ledger struct {
	mu       sync.RWMutex
	cache    map[int64]model.PointBalance
	tasks    *store.TaskStore
	rewards  *store.RewardStore
	children *store.ChildStore
}

func NewLedger(ts *store.TaskStore, rs *store.RewardStore, cs *store.ChildStore) *Ledger {
	return &Ledger{
		cache:    make(map[int64]model.PointBalance),
		tasks:    ts,
		rewards:  rs,
		children: cs,
	}
}

// Balance returns the cached balance when present, recomputing otherwise.
func (l *Ledger) Balance(childID int64) (model.PointBalance, error) {
	l.mu.RLock()
	b, ok := l.cache[childID]
	l.mu.RUnlock()
	if ok {
		return b, nil
	}
	return l.Reconcile(childID)
}

// Reconcile recomputes a child's balance from approved-task and claim sums
// and replaces any cached value. This is the single source of truth; the
// optimistic increments in Credit and Debit only exist so callers see the
// new balance before the recompute lands.
func (l *Ledger) Reconcile(childID int64) (model.PointBalance, error) {
	earned, err := l.tasks.SumApprovedPoints(childID)
	if err != nil {
		return model.PointBalance{}, fmt.Errorf("reconcile earned: %w", err)
	}
	spent, err := l.rewards.SumPointsSpent(childID)
	if err != nil {
		return model.PointBalance{}, fmt.Errorf("reconcile spent: %w", err)
	}

	name := ""
	if child, err := l.children.GetByID(childID); err == nil && child != nil {
		name = child.Name
	}

	b := model.PointBalance{
		ChildID:       childID,
		ChildName:     name,
		TotalPoints:   earned,
		SpentPoints:   spent,
		CurrentPoints: earned - spent,
	}

	l.mu.Lock()
	l.cache[childID] = b
	l.mu.Unlock()
	return b, nil
}

// Credit applies an optimistic bump so the new balance is visible
// immediately, then reconciles against source rows.
func (l *Ledger) Credit(childID int64, pts int) (model.PointBalance, error) {
	l.mu.Lock()
	if b, ok := l.cache[childID]; ok {
		b.TotalPoints += pts
		b.CurrentPoints += pts
		l.cache[childID] = b
	}
	l.mu.Unlock()

	return l.Reconcile(childID)
}

// Debit checks spendable balance against a fresh recompute, never the
// cache, and fails with ErrInsufficientPoints without touching state.
func (l *Ledger) Debit(childID int64, pts int) (model.PointBalance, error) {
	b, err := l.Reconcile(childID)
	if err != nil {
		return model.PointBalance{}, err
	}
	if b.CurrentPoints < pts {
		return b, ErrInsufficientPoints
	}

	l.mu.Lock()
	b.SpentPoints += pts
	b.CurrentPoints -= pts
	l.cache[childID] = b
	l.mu.Unlock()

	return b, nil
}

// Invalidate drops a cached entry; the next read recomputes.
func (l *Ledger) Invalidate(childID int64) {
	l.mu.Lock()
	delete(l.cache, childID)
	l.mu.Unlock()
}

// AllBalances recomputes every child of the parent, highest spendable
// balance first.
func (l *Ledger) AllBalances(parentID int64) ([]model.PointBalance, error) {
	children, err := l.children.ListByParent(parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	var balances []model.PointBalance
	for _, c := range children {
		b, err := l.Reconcile(c.ID)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].CurrentPoints > balances[j].CurrentPoints
	})
	return balances, nil
}
