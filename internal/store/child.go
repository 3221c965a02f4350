package store

import (
	"database/sql"
	"fmt"

	"github.com/JPedro1988/app-kidquest/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	var age sql.NullInt64

	err := scanner.Scan(&c.ID, &c.ParentID, &c.Name, &age, &c.AvatarEmoji, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if age.Valid {
		a := int(age.Int64)
		c.Age = &a
	}
	return &c, nil
}

const childCols = `id, parent_id, name, age, avatar_emoji, created_at, updated_at`

func (s *ChildStore) Create(parentID int64, name string, age *int, avatarEmoji string) (*model.Child, error) {
	var a sql.NullInt64
	if age != nil {
		a = sql.NullInt64{Int64: int64(*age), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO children (parent_id, name, age, avatar_emoji) VALUES (?, ?, ?, ?)`,
		parentID, name, a, avatarEmoji,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) ListByParent(parentID int64) ([]model.Child, error) {
	rows, err := s.db.Query(
		`SELECT `+childCols+` FROM children WHERE parent_id = ? ORDER BY created_at ASC, id ASC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) ListAll() ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT ` + childCols + ` FROM children ORDER BY parent_id ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) Update(id int64, name string, age *int, avatarEmoji string) (*model.Child, error) {
	var a sql.NullInt64
	if age != nil {
		a = sql.NullInt64{Int64: int64(*age), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE children SET name = ?, age = ?, avatar_emoji = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, a, avatarEmoji, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}
