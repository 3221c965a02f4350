package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JPedro1988/app-kidquest/internal/auth"
	"github.com/JPedro1988/app-kidquest/internal/database"
	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/points"
	"github.com/JPedro1988/app-kidquest/internal/state"
	"github.com/JPedro1988/app-kidquest/internal/store"
	"github.com/JPedro1988/app-kidquest/internal/task"
	ws "github.com/JPedro1988/app-kidquest/internal/websocket"
)

type taskHandlerFixture struct {
	h        *TaskHandler
	sync     *state.Synchronizer
	parentID int64
	childID  int64
}

func setupTaskHandlerTest(t *testing.T) *taskHandlerFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	code := "HND001"
	parent, err := users.Create("handler@example.com", "Parent", model.RoleParent, "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	children := store.NewChildStore(db)
	child, err := children.Create(parent.ID, "Max", nil, "🦁")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	tasks := store.NewTaskStore(db)
	rewards := store.NewRewardStore(db)
	ledger := points.NewLedger(tasks, rewards, children)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	loader := func() (*state.Snapshot, error) {
		snap := &state.Snapshot{}
		all, err := children.ListAll()
		if err != nil {
			return nil, err
		}
		for _, c := range all {
			b, err := ledger.Reconcile(c.ID)
			if err != nil {
				return nil, err
			}
			snap.Balances = append(snap.Balances, b)
		}
		if snap.Tasks, err = tasks.List(); err != nil {
			return nil, err
		}
		if snap.Rewards, err = rewards.ListAll(); err != nil {
			return nil, err
		}
		return snap, nil
	}
	sync := state.NewSynchronizer(loader, "", logger)
	if err := sync.Refresh(); err != nil {
		t.Fatalf("refresh snapshot: %v", err)
	}

	svc := task.NewService(tasks, children, ledger, logger)
	hub := ws.NewHub(logger)

	return &taskHandlerFixture{
		h:        NewTaskHandler(svc, sync, hub, logger),
		sync:     sync,
		parentID: parent.ID,
		childID:  child.ID,
	}
}

func (f *taskHandlerFixture) request(t *testing.T, method, target, id string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	if id != "" {
		r.SetPathValue("id", id)
	}
	ctx := auth.WithAuth(r.Context(), auth.AuthContext{
		UserID:   f.parentID,
		FamilyID: f.parentID,
		Role:     model.RoleParent,
	})
	return r.WithContext(ctx)
}

func (f *taskHandlerFixture) snapshotTask(t *testing.T, id int64) *model.Task {
	t.Helper()
	for _, st := range f.sync.Current().Tasks {
		if st.ID == id {
			return &st
		}
	}
	return nil
}

// Mutations must land in the live snapshot, not just the database, so
// summary reads stay current between restarts.
func TestTaskHandlerUpdatesSnapshot(t *testing.T) {
	f := setupTaskHandlerTest(t)

	w := httptest.NewRecorder()
	f.h.Create(w, f.request(t, http.MethodPost, "/api/tasks", "", taskRequest{
		ChildID: f.childID,
		Title:   "Feed the cat",
		Points:  10,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created model.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created task: %v", err)
	}

	st := f.snapshotTask(t, created.ID)
	if st == nil {
		t.Fatal("created task missing from snapshot")
	}
	if st.Status != task.StatusPending {
		t.Errorf("snapshot status = %q, want pending", st.Status)
	}

	w = httptest.NewRecorder()
	f.h.Approve(w, f.request(t, http.MethodPost, "/api/tasks/approve", fmt.Sprint(created.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", w.Code, w.Body.String())
	}

	st = f.snapshotTask(t, created.ID)
	if st == nil || st.Status != task.StatusApproved {
		t.Fatalf("snapshot task after approve = %+v, want approved", st)
	}

	var balance *model.PointBalance
	for _, b := range f.sync.Current().Balances {
		if b.ChildID == f.childID {
			b := b
			balance = &b
		}
	}
	if balance == nil || balance.CurrentPoints != 10 {
		t.Errorf("snapshot balance = %+v, want 10 current points", balance)
	}
}

func TestTaskHandlerRollsBackFailedMutation(t *testing.T) {
	f := setupTaskHandlerTest(t)

	before := f.sync.Current()

	w := httptest.NewRecorder()
	f.h.Approve(w, f.request(t, http.MethodPost, "/api/tasks/approve", "9999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("approve status = %d, want 404", w.Code)
	}

	after := f.sync.Current()
	if len(after.Tasks) != len(before.Tasks) {
		t.Errorf("snapshot tasks = %d, want %d after rollback", len(after.Tasks), len(before.Tasks))
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("snapshot updated_at changed across a rolled back mutation")
	}
}
