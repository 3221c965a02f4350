package state

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JPedro1988/app-kidquest/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticLoader(snap *Snapshot) Loader {
	return func() (*Snapshot, error) {
		return snap.clone(), nil
	}
}

func TestStageVisibleImmediately(t *testing.T) {
	s := NewSynchronizer(staticLoader(&Snapshot{}), "", testLogger())

	staged := s.Stage(func(snap *Snapshot) {
		snap.Tasks = append(snap.Tasks, model.Task{ID: 1, Title: "sweep"})
	})

	got := s.Current()
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "sweep" {
		t.Errorf("staged task not visible: %+v", got.Tasks)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("staging did not bump UpdatedAt")
	}

	staged.Rollback()
}

func TestRollbackRestoresExactSnapshot(t *testing.T) {
	s := NewSynchronizer(staticLoader(&Snapshot{}), "", testLogger())
	if err := s.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	before := s.Current()

	staged := s.Stage(func(snap *Snapshot) {
		snap.Balances = append(snap.Balances, model.PointBalance{ChildID: 7, CurrentPoints: 99})
	})
	staged.Rollback()

	after := s.Current()
	if len(after.Balances) != 0 {
		t.Errorf("balances = %+v, want staged entry gone", after.Balances)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want pre-stage %v", after.UpdatedAt, before.UpdatedAt)
	}

	// Rollback after commit-or-rollback is a no-op.
	staged.Rollback()
}

func TestCommitReplacesWholesale(t *testing.T) {
	authoritative := &Snapshot{
		Tasks: []model.Task{{ID: 42, Title: "walk dog", Points: 10}},
	}
	s := NewSynchronizer(staticLoader(authoritative), "", testLogger())

	staged := s.Stage(func(snap *Snapshot) {
		snap.Tasks = append(snap.Tasks, model.Task{ID: 999, Title: "guess", Points: 1})
	})
	if err := staged.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got := s.Current()
	if len(got.Tasks) != 1 || got.Tasks[0].ID != 42 {
		t.Errorf("tasks = %+v, want only the loader's rows", got.Tasks)
	}
}

func TestRefreshError(t *testing.T) {
	boom := errors.New("db gone")
	s := NewSynchronizer(func() (*Snapshot, error) { return nil, boom }, "", testLogger())

	s.Stage(func(snap *Snapshot) {
		snap.Rewards = append(snap.Rewards, model.Reward{ID: 1, Title: "keep me"})
	})

	if err := s.Refresh(); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want loader error", err)
	}
	// A failed refresh leaves the snapshot alone.
	if got := s.Current(); len(got.Rewards) != 1 {
		t.Errorf("rewards = %+v, want staged state intact", got.Rewards)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewSynchronizer(staticLoader(&Snapshot{
		Tasks: []model.Task{{ID: 1, Title: "original"}},
	}), "", testLogger())
	if err := s.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got := s.Current()
	got.Tasks[0].Title = "scribbled"

	if fresh := s.Current(); fresh.Tasks[0].Title != "original" {
		t.Errorf("caller mutation leaked into the snapshot: %q", fresh.Tasks[0].Title)
	}
}

func TestForFamily(t *testing.T) {
	snap := &Snapshot{
		Balances: []model.PointBalance{
			{ChildID: 1, CurrentPoints: 10},
			{ChildID: 2, CurrentPoints: 20},
		},
		Tasks: []model.Task{
			{ID: 1, ChildID: 1},
			{ID: 2, ChildID: 2},
		},
		Rewards: []model.Reward{
			{ID: 1, ParentID: 100},
			{ID: 2, ParentID: 200},
		},
	}

	fam := snap.ForFamily(100, map[int64]bool{1: true})
	if len(fam.Balances) != 1 || fam.Balances[0].ChildID != 1 {
		t.Errorf("balances = %+v", fam.Balances)
	}
	if len(fam.Tasks) != 1 || fam.Tasks[0].ChildID != 1 {
		t.Errorf("tasks = %+v", fam.Tasks)
	}
	if len(fam.Rewards) != 1 || fam.Rewards[0].ParentID != 100 {
		t.Errorf("rewards = %+v", fam.Rewards)
	}
}

func TestFlushAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	src := NewSynchronizer(staticLoader(&Snapshot{
		Balances: []model.PointBalance{{ChildID: 3, ChildName: "Kim", TotalPoints: 50, SpentPoints: 20, CurrentPoints: 30}},
		Tasks:    []model.Task{{ID: 5, ChildID: 3, Title: "dishes", Status: "pending"}},
	}), path, testLogger())
	if err := src.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := src.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	dst := NewSynchronizer(staticLoader(&Snapshot{}), path, testLogger())
	if err := dst.LoadFromDisk(); err != nil {
		t.Fatalf("load: %v", err)
	}

	got := dst.Current()
	if len(got.Balances) != 1 || got.Balances[0].CurrentPoints != 30 {
		t.Errorf("balances = %+v", got.Balances)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "dishes" {
		t.Errorf("tasks = %+v", got.Tasks)
	}

	// No tmp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("tmp file still present: %v", err)
	}
}

func TestLoadFromDiskMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never-written.json")
	s := NewSynchronizer(staticLoader(&Snapshot{}), path, testLogger())
	if err := s.LoadFromDisk(); err != nil {
		t.Errorf("missing file err = %v, want nil", err)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	creds := Credentials{
		"user-1": "hunter2",
		"user-2": "pa:ss/wo+rd=",
	}
	if err := SaveCredentials(dir, creds); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Raw secrets must not appear on disk.
	raw, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if bytes.Contains(raw, []byte("hunter2")) {
		t.Error("credential file holds a plaintext secret")
	}

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadCredentials(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded["user-1"] != "hunter2" || loaded["user-2"] != "pa:ss/wo+rd=" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	creds, err := LoadCredentials(t.TempDir())
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(creds) != 0 {
		t.Errorf("creds = %+v, want empty map", creds)
	}
}
