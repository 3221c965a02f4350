package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/auth"
	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/state"
	"github.com/JPedro1988/app-kidquest/internal/task"
	"github.com/JPedro1988/app-kidquest/internal/websocket"
)

type TaskHandler struct {
	tasks  *task.Service
	sync   *state.Synchronizer
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(ts *task.Service, sync *state.Synchronizer, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, sync: sync, hub: hub, logger: logger}
}

type taskRequest struct {
	ChildID         int64      `json:"child_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Points          int        `json:"points"`
	IsRecurring     bool       `json:"is_recurring"`
	ChallengePeriod string     `json:"challenge_period"`
	DueDate         *time.Time `json:"due_date"`
	RewardID        *int64     `json:"reward_id"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Points <= 0 {
		writeError(w, http.StatusBadRequest, "points must be positive")
		return
	}

	familyID := auth.FamilyID(r.Context())

	// Stage the new task optimistically; the commit's reload replaces
	// the provisional entry with the stored row and its real ID.
	staged := h.sync.Stage(func(s *state.Snapshot) {
		s.Tasks = append(s.Tasks, model.Task{
			ChildID:         req.ChildID,
			Title:           req.Title,
			Description:     req.Description,
			Category:        req.Category,
			Points:          req.Points,
			Status:          task.StatusPending,
			IsRecurring:     req.IsRecurring,
			ChallengePeriod: req.ChallengePeriod,
			DueDate:         req.DueDate,
			RewardID:        req.RewardID,
		})
	})

	t, err := h.tasks.Create(familyID, task.CreateParams{
		ChildID:         req.ChildID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Points:          req.Points,
		IsRecurring:     req.IsRecurring,
		ChallengePeriod: req.ChallengePeriod,
		DueDate:         req.DueDate,
		RewardID:        req.RewardID,
	})
	if err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after task create", "error", err)
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("task", "created", t.ID, map[string]any{
		"child_id": t.ChildID,
	}))
	writeJSON(w, http.StatusCreated, t)
}

// List returns the family's tasks for parents, or just the caller's own
// tasks when a child account asks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var (
		tasks []model.Task
		err   error
	)
	if ac.Role == model.RoleParent {
		tasks, err = h.tasks.ListByParent(ac.FamilyID)
	} else {
		tasks, err = h.listForChildUser(r)
	}
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, err := h.tasks.Get(auth.FamilyID(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type completeRequest struct {
	ChildID    int64  `json:"child_id"`
	PhotoProof string `json:"photo_proof"`
}

// Complete submits a finished task for review. Parents may submit on a
// child's behalf by naming the child in the body.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ChildID == 0 {
		writeError(w, http.StatusBadRequest, "child_id is required")
		return
	}

	staged := h.sync.Stage(func(s *state.Snapshot) {
		for i := range s.Tasks {
			if s.Tasks[i].ID == id {
				s.Tasks[i].Status = task.StatusCompleted
				s.Tasks[i].PhotoProof = req.PhotoProof
			}
		}
	})

	t, err := h.tasks.SubmitCompletion(auth.FamilyID(r.Context()), req.ChildID, id, req.PhotoProof)
	if err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after task completion", "error", err)
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	// Flip the status and bump the balance optimistically; the commit's
	// reload swaps in the reconciled balance and any spawned successor.
	staged := h.sync.Stage(func(s *state.Snapshot) {
		for i := range s.Tasks {
			if s.Tasks[i].ID != id {
				continue
			}
			s.Tasks[i].Status = task.StatusApproved
			for j := range s.Balances {
				if s.Balances[j].ChildID == s.Tasks[i].ChildID {
					s.Balances[j].TotalPoints += s.Tasks[i].Points
					s.Balances[j].CurrentPoints += s.Tasks[i].Points
				}
			}
		}
	})

	t, err := h.tasks.Approve(auth.FamilyID(r.Context()), id)
	if err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after task approval", "error", err)
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	staged := h.sync.Stage(func(s *state.Snapshot) {
		for i := range s.Tasks {
			if s.Tasks[i].ID == id {
				s.Tasks[i].Status = task.StatusPending
				s.Tasks[i].PhotoProof = ""
				s.Tasks[i].CompletedAt = nil
			}
		}
	})

	t, err := h.tasks.Reject(auth.FamilyID(r.Context()), id)
	if err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after task rejection", "error", err)
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	familyID := auth.FamilyID(r.Context())

	staged := h.sync.Stage(func(s *state.Snapshot) {
		kept := s.Tasks[:0]
		for _, t := range s.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.Tasks = kept
	})

	if err := h.tasks.Delete(familyID, id); err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after task delete", "error", err)
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("task", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// listForChildUser resolves which child profile a child account maps to
// via the ?child_id query parameter.
func (h *TaskHandler) listForChildUser(r *http.Request) ([]model.Task, error) {
	childID, err := queryInt64(r, "child_id")
	if err != nil || childID == 0 {
		return h.tasks.ListByParent(auth.FamilyID(r.Context()))
	}
	return h.tasks.ListByChild(childID)
}
