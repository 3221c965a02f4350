package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JPedro1988/app-kidquest/internal/auth"
	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/points"
	"github.com/JPedro1988/app-kidquest/internal/state"
	"github.com/JPedro1988/app-kidquest/internal/store"
	"github.com/JPedro1988/app-kidquest/internal/websocket"
)

type ChildHandler struct {
	children *store.ChildStore
	ledger   *points.Ledger
	sync     *state.Synchronizer
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewChildHandler(cs *store.ChildStore, ledger *points.Ledger, sync *state.Synchronizer, hub *websocket.Hub, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{children: cs, ledger: ledger, sync: sync, hub: hub, logger: logger}
}

type childRequest struct {
	Name        string `json:"name"`
	Age         *int   `json:"age"`
	AvatarEmoji string `json:"avatar_emoji"`
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	familyID := auth.FamilyID(r.Context())

	// A new child starts with a zero balance; the commit's reload fills
	// in the real child ID.
	staged := h.sync.Stage(func(s *state.Snapshot) {
		s.Balances = append(s.Balances, model.PointBalance{ChildName: req.Name})
	})

	child, err := h.children.Create(familyID, req.Name, req.Age, req.AvatarEmoji)
	if err != nil {
		staged.Rollback()
		h.logger.Error("create child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create child")
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after child create", "error", err)
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("child", "created", child.ID, nil))
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.children.ListByParent(auth.FamilyID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list children")
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	child, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	child, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	staged := h.sync.Stage(func(s *state.Snapshot) {
		for i := range s.Balances {
			if s.Balances[i].ChildID == child.ID {
				s.Balances[i].ChildName = req.Name
			}
		}
	})

	updated, err := h.children.Update(child.ID, req.Name, req.Age, req.AvatarEmoji)
	if err != nil {
		staged.Rollback()
		h.logger.Error("update child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update child")
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after child update", "error", err)
	}

	h.hub.Broadcast(child.ParentID, websocket.NewMessage("child", "updated", child.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	child, ok := h.owned(w, r)
	if !ok {
		return
	}

	staged := h.sync.Stage(func(s *state.Snapshot) {
		balances := s.Balances[:0]
		for _, b := range s.Balances {
			if b.ChildID != child.ID {
				balances = append(balances, b)
			}
		}
		s.Balances = balances

		tasks := s.Tasks[:0]
		for _, t := range s.Tasks {
			if t.ChildID != child.ID {
				tasks = append(tasks, t)
			}
		}
		s.Tasks = tasks
	})

	if err := h.children.Delete(child.ID); err != nil {
		staged.Rollback()
		h.logger.Error("delete child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete child")
		return
	}
	if err := staged.Commit(); err != nil {
		h.logger.Error("snapshot reload after child delete", "error", err)
	}

	h.ledger.Invalidate(child.ID)
	h.hub.Broadcast(child.ParentID, websocket.NewMessage("child", "deleted", child.ID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Points returns the derived balance for one child.
func (h *ChildHandler) Points(w http.ResponseWriter, r *http.Request) {
	child, ok := h.owned(w, r)
	if !ok {
		return
	}

	balance, err := h.ledger.Balance(child.ID)
	if err != nil {
		h.logger.Error("compute balance", "child_id", child.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// owned loads the path child and verifies it belongs to the caller's
// family, writing the error response itself when it does not.
func (h *ChildHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Child, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	child, err := h.children.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load child")
		return nil, false
	}
	if child == nil || child.ParentID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "child not found")
		return nil, false
	}
	return child, true
}
