package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var active int
	var expiresAt sql.NullTime

	err := scanner.Scan(&r.ID, &r.ParentID, &r.Title, &r.Description, &r.Category, &r.PointsRequired, &active, &expiresAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.Active = active != 0
	if expiresAt.Valid {
		r.ExpiresAt = &expiresAt.Time
	}
	return &r, nil
}

const rewardCols = `id, parent_id, title, description, category, points_required, active, expires_at, created_at`

func (s *RewardStore) Create(parentID int64, title, description, category string, pointsRequired int, expiresAt *time.Time) (*model.Reward, error) {
	var exp sql.NullTime
	if expiresAt != nil {
		exp = sql.NullTime{Time: expiresAt.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO rewards (parent_id, title, description, category, points_required, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		parentID, title, description, category, pointsRequired, exp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// ListByParent returns the parent's active rewards, newest first.
func (s *RewardStore) ListByParent(parentID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE parent_id = ? AND active = 1 ORDER BY created_at DESC, id DESC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

// ListAll returns every active reward across all families.
func (s *RewardStore) ListAll() ([]model.Reward, error) {
	rows, err := s.db.Query(`SELECT ` + rewardCols + ` FROM rewards WHERE active = 1 ORDER BY parent_id ASC, created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(id int64, title, description, category string, pointsRequired int, expiresAt *time.Time) (*model.Reward, error) {
	var expires sql.NullTime
	if expiresAt != nil {
		expires = sql.NullTime{Time: expiresAt.UTC(), Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE rewards SET title = ?, description = ?, category = ?, points_required = ?, expires_at = ? WHERE id = ?`,
		title, description, category, pointsRequired, expires, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(id)
}

// Deactivate soft-deletes a reward so historical claims stay attributable.
func (s *RewardStore) Deactivate(id int64) error {
	_, err := s.db.Exec(`UPDATE rewards SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate reward: %w", err)
	}
	return nil
}

// --- Claim methods ---

func scanClaim(scanner interface{ Scan(...any) error }) (*model.RewardClaim, error) {
	var c model.RewardClaim
	var childID sql.NullInt64
	var paid int

	err := scanner.Scan(&c.ID, &c.RewardID, &childID, &c.PointsSpent, &paid, &c.ClaimedAt)
	if err != nil {
		return nil, err
	}

	if childID.Valid {
		c.ChildID = &childID.Int64
	}
	c.Paid = paid != 0
	return &c, nil
}

const claimCols = `id, reward_id, child_id, points_spent, paid, claimed_at`

func (s *RewardStore) CreateClaim(rewardID, childID int64, pointsSpent int) (*model.RewardClaim, error) {
	result, err := s.db.Exec(
		`INSERT INTO reward_claims (reward_id, child_id, points_spent) VALUES (?, ?, ?)`,
		rewardID, childID, pointsSpent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+claimCols+` FROM reward_claims WHERE id = ?`, id)
	return scanClaim(row)
}

func (s *RewardStore) GetClaimByReward(rewardID int64) (*model.RewardClaim, error) {
	row := s.db.QueryRow(`SELECT `+claimCols+` FROM reward_claims WHERE reward_id = ?`, rewardID)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return c, nil
}

func (s *RewardStore) ListClaimsByChild(childID int64) ([]model.RewardClaim, error) {
	rows, err := s.db.Query(
		`SELECT `+claimCols+` FROM reward_claims WHERE child_id = ? ORDER BY claimed_at DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list claims by child: %w", err)
	}
	defer rows.Close()

	var claims []model.RewardClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

func (s *RewardStore) MarkClaimPaid(rewardID int64) error {
	_, err := s.db.Exec(`UPDATE reward_claims SET paid = 1 WHERE reward_id = ?`, rewardID)
	if err != nil {
		return fmt.Errorf("mark claim paid: %w", err)
	}
	return nil
}

func (s *RewardStore) SumPointsSpent(childID int64) (int, error) {
	var spent sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(points_spent), 0) FROM reward_claims WHERE child_id = ?`,
		childID,
	).Scan(&spent)
	if err != nil {
		return 0, fmt.Errorf("sum points spent: %w", err)
	}
	return int(spent.Int64), nil
}
