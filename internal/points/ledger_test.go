package points

import (
	"errors"
	"testing"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/database"
	"github.com/JPedro1988/app-kidquest/internal/store"
)

type ledgerFixture struct {
	ledger   *Ledger
	tasks    *store.TaskStore
	rewards  *store.RewardStore
	children *store.ChildStore
	parentID int64
	childID  int64
}

func setupLedgerTest(t *testing.T) *ledgerFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	code := "LDG001"
	parent, err := users.Create("ledger@example.com", "Parent", "parent", "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	children := store.NewChildStore(db)
	child, err := children.Create(parent.ID, "Sam", nil, "🦊")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	tasks := store.NewTaskStore(db)
	rewards := store.NewRewardStore(db)
	return &ledgerFixture{
		ledger:   NewLedger(tasks, rewards, children),
		tasks:    tasks,
		rewards:  rewards,
		children: children,
		parentID: parent.ID,
		childID:  child.ID,
	}
}

func (f *ledgerFixture) approveTask(t *testing.T, points int) {
	t.Helper()
	task, err := f.tasks.Create(f.childID, "chore", "", "", points, false, "", nil, nil)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := f.tasks.MarkApproved(task.ID, time.Now()); err != nil {
		t.Fatalf("approve task: %v", err)
	}
}

func TestBalanceDerivedFromRows(t *testing.T) {
	f := setupLedgerTest(t)

	b, err := f.ledger.Balance(f.childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.CurrentPoints != 0 || b.TotalPoints != 0 {
		t.Errorf("fresh balance = %+v, want zeroes", b)
	}
	if b.ChildName != "Sam" {
		t.Errorf("child name = %q, want Sam", b.ChildName)
	}

	// Rows written behind the ledger's back are picked up on reconcile.
	f.approveTask(t, 30)
	f.approveTask(t, 20)

	b, err = f.ledger.Reconcile(f.childID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if b.TotalPoints != 50 || b.CurrentPoints != 50 {
		t.Errorf("balance = %+v, want 50 earned", b)
	}
}

func TestCreditReconciles(t *testing.T) {
	f := setupLedgerTest(t)
	f.approveTask(t, 15)

	// The credit amount does not matter: the reconcile wins.
	b, err := f.ledger.Credit(f.childID, 999)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if b.CurrentPoints != 15 {
		t.Errorf("current = %d, want 15 from source rows", b.CurrentPoints)
	}
}

func TestDebit(t *testing.T) {
	f := setupLedgerTest(t)
	f.approveTask(t, 40)

	b, err := f.ledger.Debit(f.childID, 25)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if b.CurrentPoints != 15 || b.SpentPoints != 25 {
		t.Errorf("after debit = %+v", b)
	}

	// Debit checks a fresh recompute, and the claim row has not been
	// written yet, so the full 40 is still spendable here.
	if _, err := f.ledger.Debit(f.childID, 41); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("err = %v, want ErrInsufficientPoints", err)
	}
}

func TestDebitCountsClaims(t *testing.T) {
	f := setupLedgerTest(t)
	f.approveTask(t, 40)

	reward, err := f.rewards.Create(f.parentID, "ice cream", "", "", 30, nil)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if _, err := f.rewards.CreateClaim(reward.ID, f.childID, 30); err != nil {
		t.Fatalf("create claim: %v", err)
	}

	if _, err := f.ledger.Debit(f.childID, 11); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("err = %v, want ErrInsufficientPoints with 10 spendable", err)
	}
	b, err := f.ledger.Debit(f.childID, 10)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if b.CurrentPoints != 0 {
		t.Errorf("current = %d, want 0", b.CurrentPoints)
	}
}

func TestSoftDeletedTasksStillCount(t *testing.T) {
	f := setupLedgerTest(t)

	task, err := f.tasks.Create(f.childID, "chore", "", "", 25, false, "", nil, nil)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := f.tasks.MarkApproved(task.ID, time.Now()); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.tasks.SoftDelete(task.ID, time.Now()); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	b, err := f.ledger.Reconcile(f.childID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if b.TotalPoints != 25 {
		t.Errorf("earned = %d, want soft-deleted approval to keep counting", b.TotalPoints)
	}
}

func TestAllBalancesOrdering(t *testing.T) {
	f := setupLedgerTest(t)

	second, err := f.children.Create(f.parentID, "Alex", nil, "🐢")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	f.approveTask(t, 10)
	task, err := f.tasks.Create(second.ID, "big chore", "", "", 60, false, "", nil, nil)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := f.tasks.MarkApproved(task.ID, time.Now()); err != nil {
		t.Fatalf("approve: %v", err)
	}

	balances, err := f.ledger.AllBalances(f.parentID)
	if err != nil {
		t.Fatalf("all balances: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("len = %d, want 2", len(balances))
	}
	if balances[0].ChildID != second.ID || balances[0].CurrentPoints != 60 {
		t.Errorf("first = %+v, want highest balance first", balances[0])
	}
}
