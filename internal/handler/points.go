package handler

import (
	"log/slog"
	"net/http"

	"github.com/JPedro1988/app-kidquest/internal/auth"
	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/points"
	"github.com/JPedro1988/app-kidquest/internal/state"
	"github.com/JPedro1988/app-kidquest/internal/store"
)

type PointsHandler struct {
	ledger   *points.Ledger
	sync     *state.Synchronizer
	children *store.ChildStore
	logger   *slog.Logger
}

func NewPointsHandler(ledger *points.Ledger, sync *state.Synchronizer, children *store.ChildStore, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{ledger: ledger, sync: sync, children: children, logger: logger}
}

// Balances returns every child's derived balance, highest first.
func (h *PointsHandler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledger.AllBalances(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("compute balances", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute balances")
		return
	}
	if balances == nil {
		balances = []model.PointBalance{}
	}
	writeJSON(w, http.StatusOK, balances)
}

// Summary serves the caller's family slice of the synchronizer snapshot.
func (h *PointsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	children, err := h.children.ListByParent(familyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load family")
		return
	}
	childIDs := make(map[int64]bool, len(children))
	for _, c := range children {
		childIDs[c.ID] = true
	}

	writeJSON(w, http.StatusOK, h.sync.Current().ForFamily(familyID, childIDs))
}
