// Package reward manages the reward catalog and point redemption.
package reward

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/points"
	"github.com/JPedro1988/app-kidquest/internal/store"
)

var (
	ErrNotFound       = errors.New("reward not found")
	ErrAlreadyClaimed = errors.New("reward already claimed")
	ErrExpired        = errors.New("reward has expired")
	ErrWrongFamily    = errors.New("reward belongs to another family")
)

type Service struct {
	rewards  *store.RewardStore
	children *store.ChildStore
	ledger   *points.Ledger
	logger   *slog.Logger
}

func NewService(rs *store.RewardStore, cs *store.ChildStore, ledger *points.Ledger, logger *slog.Logger) *Service {
	return &Service{
		rewards:  rs,
		children: cs,
		ledger:   ledger,
		logger:   logger.With("component", "reward"),
	}
}

type CreateParams struct {
	Title          string
	Description    string
	Category       string
	PointsRequired int
	ExpiresAt      *time.Time
}

func (s *Service) Create(parentID int64, p CreateParams) (*model.Reward, error) {
	if p.PointsRequired <= 0 {
		return nil, fmt.Errorf("points required must be positive")
	}
	r, err := s.rewards.Create(parentID, p.Title, p.Description, p.Category, p.PointsRequired, p.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	return r, nil
}

func (s *Service) Get(parentID, rewardID int64) (*model.Reward, error) {
	r, err := s.rewards.GetByID(rewardID)
	if err != nil {
		return nil, fmt.Errorf("load reward: %w", err)
	}
	if r == nil || r.ParentID != parentID {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *Service) ListByParent(parentID int64) ([]model.Reward, error) {
	return s.rewards.ListByParent(parentID)
}

func (s *Service) Update(parentID int64, rewardID int64, p CreateParams) (*model.Reward, error) {
	r, err := s.Get(parentID, rewardID)
	if err != nil {
		return nil, err
	}
	updated, err := s.rewards.Update(r.ID, p.Title, p.Description, p.Category, p.PointsRequired, p.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return updated, nil
}

// Delete deactivates a reward. Existing claims keep their row so spent
// points remain attributable.
func (s *Service) Delete(parentID, rewardID int64) error {
	r, err := s.Get(parentID, rewardID)
	if err != nil {
		return err
	}
	if err := s.rewards.Deactivate(r.ID); err != nil {
		return fmt.Errorf("deactivate reward: %w", err)
	}
	return nil
}

// Claim redeems a reward for a child. The child must belong to the
// caller's family. The cost checked and recorded is the reward's price
// at claim time; later edits to the reward do not retroactively change
// what was spent.
func (s *Service) Claim(familyID, childID, rewardID int64) (*model.RewardClaim, error) {
	child, err := s.children.GetByID(childID)
	if err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}
	if child == nil {
		return nil, ErrNotFound
	}
	if child.ParentID != familyID {
		return nil, ErrWrongFamily
	}

	r, err := s.rewards.GetByID(rewardID)
	if err != nil {
		return nil, fmt.Errorf("load reward: %w", err)
	}
	if r == nil || !r.Active {
		return nil, ErrNotFound
	}
	if r.ParentID != child.ParentID {
		return nil, ErrWrongFamily
	}
	if r.ExpiresAt != nil && time.Now().UTC().After(*r.ExpiresAt) {
		return nil, ErrExpired
	}

	existing, err := s.rewards.GetClaimByReward(rewardID)
	if err != nil {
		return nil, fmt.Errorf("check existing claim: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyClaimed
	}

	if _, err := s.ledger.Debit(childID, r.PointsRequired); err != nil {
		return nil, err
	}

	claim, err := s.rewards.CreateClaim(rewardID, childID, r.PointsRequired)
	if err != nil {
		// The unique index on reward_id closes the race between two
		// children claiming at once; the loser lands here.
		s.ledger.Invalidate(childID)
		return nil, ErrAlreadyClaimed
	}

	if _, err := s.ledger.Reconcile(childID); err != nil {
		s.logger.Error("reconcile after claim failed", "child_id", childID, "error", err)
	}

	s.logger.Info("reward claimed", "reward_id", rewardID, "child_id", childID, "points_spent", r.PointsRequired)
	return claim, nil
}

// MarkFulfilled records that the parent has handed over the reward.
func (s *Service) MarkFulfilled(parentID, rewardID int64) (*model.RewardClaim, error) {
	if _, err := s.Get(parentID, rewardID); err != nil {
		// Deactivated rewards can still be fulfilled.
		r, rerr := s.rewards.GetByID(rewardID)
		if rerr != nil || r == nil || r.ParentID != parentID {
			return nil, err
		}
	}

	claim, err := s.rewards.GetClaimByReward(rewardID)
	if err != nil {
		return nil, fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return nil, ErrNotFound
	}
	if err := s.rewards.MarkClaimPaid(rewardID); err != nil {
		return nil, fmt.Errorf("mark claim paid: %w", err)
	}
	return s.rewards.GetClaimByReward(rewardID)
}

func (s *Service) ClaimsByChild(childID int64) ([]model.RewardClaim, error) {
	return s.rewards.ListClaimsByChild(childID)
}
