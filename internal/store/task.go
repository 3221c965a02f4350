package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var recurring int
	var dueDate, completedAt, approvedAt, lastRecurredAt, deletedAt sql.NullTime
	var photo sql.NullString
	var rewardID sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.ChildID, &t.Title, &t.Description, &t.Points, &t.Category,
		&t.Status, &recurring, &t.ChallengePeriod, &dueDate, &photo, &rewardID,
		&completedAt, &approvedAt, &lastRecurredAt, &deletedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsRecurring = recurring != 0
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if photo.Valid {
		t.PhotoProof = photo.String
	}
	if rewardID.Valid {
		t.RewardID = &rewardID.Int64
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	if lastRecurredAt.Valid {
		t.LastRecurredAt = &lastRecurredAt.Time
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

const taskCols = `id, child_id, title, description, points, category, status, is_recurring, challenge_period, due_date, photo_proof, reward_id, completed_at, approved_at, last_recurred_at, deleted_at, created_at`

// taskOrder puts pending tasks first, then completed, then approved;
// newest-created first within each band.
const taskOrder = `ORDER BY CASE status WHEN 'pending' THEN 0 WHEN 'completed' THEN 1 ELSE 2 END, created_at DESC, id DESC`

func (s *TaskStore) Create(childID int64, title, description, category string, points int, recurring bool, period string, dueDate *time.Time, rewardID *int64) (*model.Task, error) {
	var r int
	if recurring {
		r = 1
	}
	// The period column rejects anything outside daily/weekly/monthly, so
	// an unset period falls back to weekly here rather than failing the
	// insert.
	if period == "" {
		period = model.PeriodWeekly
	}
	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	}
	var rID sql.NullInt64
	if rewardID != nil {
		rID = sql.NullInt64{Int64: *rewardID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (child_id, title, description, points, category, is_recurring, challenge_period, due_date, reward_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		childID, title, description, points, category, r, period, due, rID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks WHERE deleted_at IS NULL ` + taskOrder)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *TaskStore) ListByChild(childID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE child_id = ? AND deleted_at IS NULL `+taskOrder,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by child: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *TaskStore) ListByParent(parentID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE child_id IN (SELECT id FROM children WHERE parent_id = ?) AND deleted_at IS NULL `+taskOrder,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by parent: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) MarkCompleted(id int64, photo string, at time.Time) (*model.Task, error) {
	var p sql.NullString
	if photo != "" {
		p = sql.NullString{String: photo, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET status = 'completed', photo_proof = ?, completed_at = ? WHERE id = ?`,
		p, at.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) MarkApproved(id int64, at time.Time) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = 'approved', approved_at = ? WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("mark approved: %w", err)
	}
	return s.GetByID(id)
}

// ResetToPending rejects a completed submission: status back to pending,
// photo and completion timestamp cleared.
func (s *TaskStore) ResetToPending(id int64) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = 'pending', photo_proof = NULL, completed_at = NULL WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("reset to pending: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) SetLastRecurred(id int64, at time.Time) error {
	_, err := s.db.Exec(`UPDATE tasks SET last_recurred_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("set last recurred: %w", err)
	}
	return nil
}

// SoftDelete hides a task from listings while keeping its row so that
// already-credited points remain derivable.
func (s *TaskStore) SoftDelete(id int64, at time.Time) error {
	_, err := s.db.Exec(`UPDATE tasks SET deleted_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// SumApprovedPoints includes soft-deleted rows: deleting an approved task
// never reverses its credit.
func (s *TaskStore) SumApprovedPoints(childID int64) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(points), 0) FROM tasks WHERE child_id = ? AND status = 'approved'`,
		childID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum approved points: %w", err)
	}
	return int(total.Int64), nil
}
