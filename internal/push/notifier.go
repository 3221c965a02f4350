package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/store"
	"github.com/JPedro1988/app-kidquest/internal/websocket"
)

// Notifier fans task and reward events out to web push subscribers and
// the family's websocket feed. Sends happen on their own goroutine so
// request handlers never wait on a push service.
type Notifier struct {
	service  *Service
	subs     *store.PushStore
	hub      *websocket.Hub
	children *store.ChildStore
	logger   *slog.Logger
}

func NewNotifier(svc *Service, subs *store.PushStore, children *store.ChildStore, hub *websocket.Hub, logger *slog.Logger) *Notifier {
	return &Notifier{
		service:  svc,
		subs:     subs,
		hub:      hub,
		children: children,
		logger:   logger.With("component", "push"),
	}
}

// TaskSubmitted tells the parent a completion is waiting for review.
func (n *Notifier) TaskSubmitted(t *model.Task, child *model.Child) {
	n.hub.Broadcast(child.ParentID, websocket.NewMessage("task", "completed", t.ID, map[string]any{
		"child_id": child.ID,
		"status":   t.Status,
	}))

	go n.pushToUser(child.ParentID, Payload{
		Title: "Task ready for review",
		Body:  fmt.Sprintf("%s finished %q", child.Name, t.Title),
		Tag:   fmt.Sprintf("task-%d", t.ID),
		URL:   "/tasks",
	})
}

// TaskReviewed broadcasts the outcome of a parent's review.
func (n *Notifier) TaskReviewed(t *model.Task, approved bool) {
	action := "rejected"
	if approved {
		action = "approved"
	}

	child, err := n.childOf(t.ChildID)
	if err != nil {
		n.logger.Error("load child for review broadcast", "task_id", t.ID, "error", err)
		return
	}

	n.hub.Broadcast(child.ParentID, websocket.NewMessage("task", action, t.ID, map[string]any{
		"child_id": t.ChildID,
		"points":   t.Points,
	}))
}

// RewardClaimed notifies the household that a reward was redeemed.
func (n *Notifier) RewardClaimed(r *model.Reward, child *model.Child) {
	n.hub.Broadcast(r.ParentID, websocket.NewMessage("reward", "claimed", r.ID, map[string]any{
		"child_id":     child.ID,
		"points_spent": r.PointsRequired,
	}))

	go n.pushToUser(r.ParentID, Payload{
		Title: "Reward claimed",
		Body:  fmt.Sprintf("%s claimed %q", child.Name, r.Title),
		Tag:   fmt.Sprintf("reward-%d", r.ID),
		URL:   "/rewards",
	})
}

// pushToUser sends to every subscription of one user, pruning the ones
// the push service says are gone.
func (n *Notifier) pushToUser(userID int64, payload Payload) {
	if !n.service.Enabled() {
		return
	}

	subs, err := n.subs.ListByUser(userID)
	if err != nil {
		n.logger.Error("list push subscriptions", "user_id", userID, "error", err)
		return
	}

	for _, sub := range subs {
		err := n.service.Send(&sub, payload)
		if errors.Is(err, ErrExpired) {
			if derr := n.subs.Delete(sub.ID); derr != nil {
				n.logger.Error("prune expired subscription", "id", sub.ID, "error", derr)
			}
			continue
		}
		if err != nil {
			n.logger.Warn("push send failed", "id", sub.ID, "error", err)
		}
	}
}

func (n *Notifier) childOf(childID int64) (*model.Child, error) {
	return n.children.GetByID(childID)
}
