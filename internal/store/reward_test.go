package store

import (
	"testing"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/database"
	"github.com/JPedro1988/app-kidquest/internal/model"
)

func setupRewardTestDB(t *testing.T) (*RewardStore, int64, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	code := "RWD123"
	parent, err := NewUserStore(db).Create("p@example.com", "Parent", model.RoleParent, "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := NewChildStore(db).Create(parent.ID, "Lee", nil, "🐼")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return NewRewardStore(db), parent.ID, child.ID
}

func TestRewardCRUD(t *testing.T) {
	rs, parentID, _ := setupRewardTestDB(t)

	reward, err := rs.Create(parentID, "Ice cream", "Trip to the shop", "", 50, nil)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if reward.Title != "Ice cream" {
		t.Errorf("title = %q, want Ice cream", reward.Title)
	}
	if reward.PointsRequired != 50 {
		t.Errorf("points_required = %d, want 50", reward.PointsRequired)
	}
	if !reward.Active {
		t.Error("expected active")
	}

	expires := time.Now().UTC().Add(24 * time.Hour)
	updated, err := rs.Update(reward.ID, "Movie night", "Pick the film", "medium", 100, &expires)
	if err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if updated.Title != "Movie night" {
		t.Errorf("title = %q, want Movie night", updated.Title)
	}
	if updated.Category != "medium" {
		t.Errorf("category = %q, want medium", updated.Category)
	}
	if updated.ExpiresAt == nil {
		t.Error("expires_at should be set after update")
	}

	if err := rs.Deactivate(reward.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	list, err := rs.ListByParent(parentID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len = %d, want 0 after deactivate", len(list))
	}

	// Deactivated rewards stay readable for claim attribution.
	got, err := rs.GetByID(reward.ID)
	if err != nil {
		t.Fatalf("get deactivated: %v", err)
	}
	if got == nil {
		t.Fatal("deactivated reward should still load")
	}
	if got.Active {
		t.Error("expected inactive")
	}
}

func TestRewardClaimLifecycle(t *testing.T) {
	rs, parentID, childID := setupRewardTestDB(t)

	reward, err := rs.Create(parentID, "Game hour", "", "", 30, nil)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	claim, err := rs.CreateClaim(reward.ID, childID, 30)
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if claim.PointsSpent != 30 {
		t.Errorf("points_spent = %d, want 30", claim.PointsSpent)
	}
	if claim.Paid {
		t.Error("new claim should be unpaid")
	}

	// One claim per reward.
	if _, err := rs.CreateClaim(reward.ID, childID, 30); err == nil {
		t.Error("expected unique constraint error for second claim")
	}

	got, err := rs.GetClaimByReward(reward.ID)
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if got == nil || got.ID != claim.ID {
		t.Fatal("expected claim for reward")
	}

	if err := rs.MarkClaimPaid(reward.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	got, err = rs.GetClaimByReward(reward.ID)
	if err != nil {
		t.Fatalf("reload claim: %v", err)
	}
	if !got.Paid {
		t.Error("claim should be paid")
	}

	spent, err := rs.SumPointsSpent(childID)
	if err != nil {
		t.Fatalf("sum points spent: %v", err)
	}
	if spent != 30 {
		t.Errorf("spent = %d, want 30", spent)
	}
}

func TestRewardClaimSurvivesDeactivation(t *testing.T) {
	rs, parentID, childID := setupRewardTestDB(t)

	reward, err := rs.Create(parentID, "Stay up late", "", "", 40, nil)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if _, err := rs.CreateClaim(reward.ID, childID, 40); err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if err := rs.Deactivate(reward.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	spent, err := rs.SumPointsSpent(childID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if spent != 40 {
		t.Errorf("spent = %d, want 40 after deactivation", spent)
	}
}
