package store

import (
	"testing"

	"github.com/JPedro1988/app-kidquest/internal/database"
	"github.com/JPedro1988/app-kidquest/internal/model"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreateAndGet(t *testing.T) {
	us := setupUserTestDB(t)

	code := "ABC123"
	user, err := us.Create("mom@example.com", "Mom", model.RoleParent, "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "mom@example.com" {
		t.Errorf("email = %q, want %q", user.Email, "mom@example.com")
	}
	if user.Role != model.RoleParent {
		t.Errorf("role = %q, want parent", user.Role)
	}
	if user.FamilyCode != "ABC123" {
		t.Errorf("family_code = %q, want ABC123", user.FamilyCode)
	}

	got, err := us.GetByEmail("mom@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("get by email returned %+v, want id %d", got, user.ID)
	}
}

func TestUserGetByFamilyCode(t *testing.T) {
	us := setupUserTestDB(t)

	code := "XYZ789"
	parent, err := us.Create("dad@example.com", "Dad", model.RoleParent, "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	got, err := us.GetByFamilyCode("XYZ789")
	if err != nil {
		t.Fatalf("get by family code: %v", err)
	}
	if got == nil || got.ID != parent.ID {
		t.Fatal("expected parent for exact code")
	}

	// Codes match exactly as issued, lowercase input does not resolve.
	got, err = us.GetByFamilyCode("xyz789")
	if err != nil {
		t.Fatalf("get by lowercase code: %v", err)
	}
	if got != nil {
		t.Error("lowercase code should not match")
	}

	got, err = us.GetByFamilyCode("NOPE99")
	if err != nil {
		t.Fatalf("get by unknown code: %v", err)
	}
	if got != nil {
		t.Error("unknown code should return nil")
	}
}

func TestUserChildLinkedToParent(t *testing.T) {
	us := setupUserTestDB(t)

	code := "FAM111"
	parent, err := us.Create("p@example.com", "Parent", model.RoleParent, "hash", &code, nil, nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	age := 9
	child, err := us.Create("kid@example.com", "Kid", model.RoleChild, "hash", nil, &parent.ID, &age)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Errorf("parent_id = %v, want %d", child.ParentID, parent.ID)
	}
	if child.Age == nil || *child.Age != 9 {
		t.Errorf("age = %v, want 9", child.Age)
	}
	if child.FamilyCode != "" {
		t.Errorf("child family_code = %q, want empty", child.FamilyCode)
	}
}

func TestUserCredentialHash(t *testing.T) {
	us := setupUserTestDB(t)

	code := "SEC456"
	if _, err := us.Create("a@example.com", "A", model.RoleParent, "secret-hash", &code, nil, nil); err != nil {
		t.Fatalf("create user: %v", err)
	}

	hash, err := us.GetCredentialHash("a@example.com")
	if err != nil {
		t.Fatalf("get credential hash: %v", err)
	}
	if hash != "secret-hash" {
		t.Errorf("hash = %q, want secret-hash", hash)
	}

	hash, err = us.GetCredentialHash("missing@example.com")
	if err != nil {
		t.Fatalf("get missing hash: %v", err)
	}
	if hash != "" {
		t.Errorf("hash for unknown email = %q, want empty", hash)
	}
}

func TestFamilyCodeExists(t *testing.T) {
	us := setupUserTestDB(t)

	code := "TAKEN1"
	if _, err := us.Create("b@example.com", "B", model.RoleParent, "hash", &code, nil, nil); err != nil {
		t.Fatalf("create user: %v", err)
	}

	taken, err := us.FamilyCodeExists("TAKEN1")
	if err != nil {
		t.Fatalf("check code: %v", err)
	}
	if !taken {
		t.Error("expected code to exist")
	}

	taken, err = us.FamilyCodeExists("FREE99")
	if err != nil {
		t.Fatalf("check free code: %v", err)
	}
	if taken {
		t.Error("unused code should not exist")
	}
}

func TestUserDuplicateEmailRejected(t *testing.T) {
	us := setupUserTestDB(t)

	code := "DUP123"
	if _, err := us.Create("dup@example.com", "One", model.RoleParent, "hash", &code, nil, nil); err != nil {
		t.Fatalf("create first: %v", err)
	}

	code2 := "DUP456"
	if _, err := us.Create("dup@example.com", "Two", model.RoleParent, "hash", &code2, nil, nil); err == nil {
		t.Error("expected unique constraint error for duplicate email")
	}
}
