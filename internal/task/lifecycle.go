package task

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/points"
	"github.com/JPedro1988/app-kidquest/internal/store"
)

// Notifier receives lifecycle events for out-of-band delivery (push,
// websocket). Implementations must not block.
type Notifier interface {
	TaskSubmitted(task *model.Task, child *model.Child)
	TaskReviewed(task *model.Task, approved bool)
}

type Service struct {
	tasks    *store.TaskStore
	children *store.ChildStore
	ledger   *points.Ledger
	notifier Notifier
	logger   *slog.Logger
}

func NewService(ts *store.TaskStore, cs *store.ChildStore, ledger *points.Ledger, logger *slog.Logger) *Service {
	return &Service{
		tasks:    ts,
		children: cs,
		ledger:   ledger,
		logger:   logger.With("component", "task"),
	}
}

// SetNotifier attaches an event sink. Called once during server wiring;
// a nil notifier means events are dropped.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateParams struct {
	ChildID         int64
	Title           string
	Description     string
	Category        string
	Points          int
	IsRecurring     bool
	ChallengePeriod string
	DueDate         *time.Time
	RewardID        *int64
}

// Create adds a pending task for a child of the given parent.
func (s *Service) Create(parentID int64, p CreateParams) (*model.Task, error) {
	child, err := s.childOf(parentID, p.ChildID)
	if err != nil {
		return nil, err
	}
	if p.Points <= 0 {
		return nil, fmt.Errorf("points must be positive")
	}
	if p.ChallengePeriod == "" {
		p.ChallengePeriod = model.PeriodWeekly
	}

	t, err := s.tasks.Create(child.ID, p.Title, p.Description, p.Category, p.Points, p.IsRecurring, p.ChallengePeriod, p.DueDate, p.RewardID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// SubmitCompletion moves a pending task to completed with optional photo
// proof, then notifies the parent. The child must belong to the caller's
// family; a valid login from another household cannot complete this task.
func (s *Service) SubmitCompletion(familyID, childID, taskID int64, photoProof string) (*model.Task, error) {
	if _, err := s.childOf(familyID, childID); err != nil {
		return nil, err
	}

	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if t == nil || t.DeletedAt != nil {
		return nil, ErrNotFound
	}
	if t.ChildID != childID {
		return nil, ErrInvalidChild
	}
	if !CanTransition(t.Status, StatusCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	t, err = s.tasks.MarkCompleted(taskID, photoProof, now)
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	if s.notifier != nil {
		child, cerr := s.children.GetByID(childID)
		if cerr == nil && child != nil {
			s.notifier.TaskSubmitted(t, child)
		}
	}

	s.logger.Info("task submitted", "task_id", taskID, "child_id", childID, "has_photo", photoProof != "")
	return t, nil
}

// Approve credits the task's points and, for recurring tasks, spawns the
// next pending instance. Pending tasks may be approved directly.
func (s *Service) Approve(parentID, taskID int64) (*model.Task, error) {
	t, err := s.ownedTask(parentID, taskID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, StatusApproved) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	t, err = s.tasks.MarkApproved(taskID, now)
	if err != nil {
		return nil, fmt.Errorf("mark approved: %w", err)
	}

	if _, err := s.ledger.Credit(t.ChildID, t.Points); err != nil {
		// The approval is already durable; the balance self-heals on the
		// next reconcile, so log and carry on.
		s.logger.Error("credit after approval failed", "task_id", taskID, "error", err)
	}

	if t.IsRecurring {
		if err := s.spawnSuccessor(t, now); err != nil {
			s.logger.Error("spawn recurring successor failed", "task_id", taskID, "error", err)
		}
	}

	if s.notifier != nil {
		s.notifier.TaskReviewed(t, true)
	}
	s.logger.Info("task approved", "task_id", taskID, "child_id", t.ChildID, "points", t.Points)
	return t, nil
}

// Reject sends a completed task back to pending, discarding the photo
// proof so the child resubmits fresh evidence.
func (s *Service) Reject(parentID, taskID int64) (*model.Task, error) {
	t, err := s.ownedTask(parentID, taskID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, StatusPending) {
		return nil, ErrInvalidTransition
	}

	t, err = s.tasks.ResetToPending(taskID)
	if err != nil {
		return nil, fmt.Errorf("reset to pending: %w", err)
	}

	if s.notifier != nil {
		s.notifier.TaskReviewed(t, false)
	}
	s.logger.Info("task rejected", "task_id", taskID, "child_id", t.ChildID)
	return t, nil
}

// Delete removes a task. Approved tasks are soft deleted so the points
// they earned stay on the child's balance; anything else is removed
// outright.
func (s *Service) Delete(parentID, taskID int64) error {
	t, err := s.ownedTask(parentID, taskID)
	if err != nil {
		return err
	}

	if t.Status == StatusApproved {
		if err := s.tasks.SoftDelete(taskID, time.Now().UTC()); err != nil {
			return fmt.Errorf("soft delete task: %w", err)
		}
		return nil
	}
	if err := s.tasks.Delete(taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Get returns a task after verifying the parent owns the child it
// belongs to.
func (s *Service) Get(parentID, taskID int64) (*model.Task, error) {
	return s.ownedTask(parentID, taskID)
}

func (s *Service) ListByParent(parentID int64) ([]model.Task, error) {
	return s.tasks.ListByParent(parentID)
}

func (s *Service) ListByChild(childID int64) ([]model.Task, error) {
	return s.tasks.ListByChild(childID)
}

// spawnSuccessor creates the next pending instance of a recurring task
// with the same template fields and stamps the approved instance.
func (s *Service) spawnSuccessor(t *model.Task, now time.Time) error {
	var due *time.Time
	if t.DueDate != nil {
		next := nextDueDate(*t.DueDate, t.ChallengePeriod)
		due = &next
	}

	if _, err := s.tasks.Create(t.ChildID, t.Title, t.Description, t.Category, t.Points, true, t.ChallengePeriod, due, t.RewardID); err != nil {
		return fmt.Errorf("create successor: %w", err)
	}
	if err := s.tasks.SetLastRecurred(t.ID, now); err != nil {
		return fmt.Errorf("stamp recurrence: %w", err)
	}
	return nil
}

func nextDueDate(from time.Time, period string) time.Time {
	switch period {
	case model.PeriodDaily:
		return from.AddDate(0, 0, 1)
	case model.PeriodMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from.AddDate(0, 0, 7)
	}
}

func (s *Service) ownedTask(parentID, taskID int64) (*model.Task, error) {
	t, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if t == nil || t.DeletedAt != nil {
		return nil, ErrNotFound
	}
	if _, err := s.childOf(parentID, t.ChildID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) childOf(parentID, childID int64) (*model.Child, error) {
	child, err := s.children.GetByID(childID)
	if err != nil {
		return nil, fmt.Errorf("load child: %w", err)
	}
	if child == nil || child.ParentID != parentID {
		return nil, ErrInvalidChild
	}
	return child, nil
}
