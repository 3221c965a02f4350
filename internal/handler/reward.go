package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/auth"
	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/push"
	"github.com/JPedro1988/app-kidquest/internal/reward"
	"github.com/JPedro1988/app-kidquest/internal/state"
	"github.com/JPedro1988/app-kidquest/internal/store"
	"github.com/JPedro1988/app-kidquest/internal/websocket"
)

type RewardHandler struct {
	rewards  *reward.Service
	children *store.ChildStore
	sync     *state.Synchronizer
	notifier *push.Notifier
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewRewardHandler(rs *reward.Service, cs *store.ChildStore, sync *state.Synchronizer, notifier *push.Notifier, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewards: rs, children: cs, sync: sync, notifier: notifier, hub: hub, logger: logger}
}

type rewardRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	PointsRequired int        `json:"points_required"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.PointsRequired <= 0 {
		writeError(w, http.StatusBadRequest, "points_required must be positive")
		return
	}

	familyID := auth.FamilyID(r.Context())

	staged := h.sync.Stage(func(s *state.Snapshot) {
		s.Rewards = append(s.Rewards, model.Reward{
			ParentID:       familyID,
			Title:          req.Title,
			Description:    req.Description,
			Category:       req.Category,
			PointsRequired: req.PointsRequired,
			Active:         true,
			ExpiresAt:      req.ExpiresAt,
		})
	})

	rw, err := h.rewards.Create(familyID, reward.CreateParams{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		PointsRequired: req.PointsRequired,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after reward create", "error", err)
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("reward", "created", rw.ID, nil))
	writeJSON(w, http.StatusCreated, rw)
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.ListByParent(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	staged := h.sync.Stage(func(s *state.Snapshot) {
		for i := range s.Rewards {
			if s.Rewards[i].ID == id {
				s.Rewards[i].Title = req.Title
				s.Rewards[i].Description = req.Description
				s.Rewards[i].Category = req.Category
				s.Rewards[i].PointsRequired = req.PointsRequired
				s.Rewards[i].ExpiresAt = req.ExpiresAt
			}
		}
	})

	rw, err := h.rewards.Update(auth.FamilyID(r.Context()), id, reward.CreateParams{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		PointsRequired: req.PointsRequired,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after reward update", "error", err)
	}

	h.hub.Broadcast(auth.FamilyID(r.Context()), websocket.NewMessage("reward", "updated", rw.ID, nil))
	writeJSON(w, http.StatusOK, rw)
}

type claimRequest struct {
	ChildID int64 `json:"child_id"`
}

func (h *RewardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ChildID == 0 {
		writeError(w, http.StatusBadRequest, "child_id is required")
		return
	}

	// Debit the claiming child's balance optimistically; the commit's
	// reload brings back the ledger-reconciled figure.
	staged := h.sync.Stage(func(s *state.Snapshot) {
		for i := range s.Rewards {
			if s.Rewards[i].ID != id {
				continue
			}
			for j := range s.Balances {
				if s.Balances[j].ChildID == req.ChildID {
					s.Balances[j].SpentPoints += s.Rewards[i].PointsRequired
					s.Balances[j].CurrentPoints -= s.Rewards[i].PointsRequired
				}
			}
		}
	})

	claim, err := h.rewards.Claim(auth.FamilyID(r.Context()), req.ChildID, id)
	if err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after reward claim", "error", err)
	}

	if rw, gerr := h.rewards.Get(auth.FamilyID(r.Context()), id); gerr == nil {
		if child, cerr := h.children.GetByID(req.ChildID); cerr == nil && child != nil {
			h.notifier.RewardClaimed(rw, child)
		}
	}

	writeJSON(w, http.StatusCreated, claim)
}

func (h *RewardHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	claim, err := h.rewards.MarkFulfilled(auth.FamilyID(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.hub.Broadcast(auth.FamilyID(r.Context()), websocket.NewMessage("reward", "fulfilled", id, nil))
	writeJSON(w, http.StatusOK, claim)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	familyID := auth.FamilyID(r.Context())

	staged := h.sync.Stage(func(s *state.Snapshot) {
		for i := range s.Rewards {
			if s.Rewards[i].ID == id {
				s.Rewards[i].Active = false
			}
		}
	})

	if err := h.rewards.Delete(familyID, id); err != nil {
		staged.Rollback()
		writeServiceError(w, err)
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after reward delete", "error", err)
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("reward", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Claims lists a child's redemption history.
func (h *RewardHandler) Claims(w http.ResponseWriter, r *http.Request) {
	childID, err := queryInt64(r, "child_id")
	if err != nil || childID == 0 {
		writeError(w, http.StatusBadRequest, "child_id is required")
		return
	}

	child, err := h.children.GetByID(childID)
	if err != nil || child == nil || child.ParentID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	claims, err := h.rewards.ClaimsByChild(childID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if claims == nil {
		claims = []model.RewardClaim{}
	}
	writeJSON(w, http.StatusOK, claims)
}
