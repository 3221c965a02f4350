package store

import (
	"database/sql"
	"fmt"

	"github.com/JPedro1988/app-kidquest/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var familyCode sql.NullString
	var parentID sql.NullInt64
	var age sql.NullInt64

	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &familyCode, &parentID, &age, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if familyCode.Valid {
		u.FamilyCode = familyCode.String
	}
	if parentID.Valid {
		u.ParentID = &parentID.Int64
	}
	if age.Valid {
		a := int(age.Int64)
		u.Age = &a
	}
	return &u, nil
}

// userCols deliberately excludes password_hash; credential material is
// only reachable through GetCredentialHash.
const userCols = `id, email, name, role, family_code, parent_id, age, created_at, updated_at`

func (s *UserStore) Create(email, name, role, passwordHash string, familyCode *string, parentID *int64, age *int) (*model.User, error) {
	var code sql.NullString
	if familyCode != nil {
		code = sql.NullString{String: *familyCode, Valid: true}
	}
	var pID sql.NullInt64
	if parentID != nil {
		pID = sql.NullInt64{Int64: *parentID, Valid: true}
	}
	var a sql.NullInt64
	if age != nil {
		a = sql.NullInt64{Int64: int64(*age), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO users (email, name, role, password_hash, family_code, parent_id, age) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		email, name, role, passwordHash, code, pID, a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetByFamilyCode looks up a parent account by its family code. The lookup
// is case-sensitive; SQLite's = operator on TEXT is case-sensitive by
// default, which is what we want here.
func (s *UserStore) GetByFamilyCode(code string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE family_code = ? AND role = 'parent'`, code)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by family code: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetCredentialHash(email string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential hash: %w", err)
	}
	return hash, nil
}

func (s *UserStore) FamilyCodeExists(code string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE family_code = ?`, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check family code: %w", err)
	}
	return count > 0, nil
}

func (s *UserStore) Update(id int64, name string, age *int) (*model.User, error) {
	var a sql.NullInt64
	if age != nil {
		a = sql.NullInt64{Int64: int64(*age), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE users SET name = ?, age = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
