package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse is the API representation of a notification
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	Data      *NotificationData `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// ToResponse converts entity to response DTO
func ToResponse(n *Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Data:      n.GetData(),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.Body.Valid {
		resp.Body = n.Body.String
	}
	if n.ReadAt.Valid {
		t := n.ReadAt.Time
		resp.ReadAt = &t
	}
	return resp
}

// ToResponseList converts entities to response DTOs
func ToResponseList(notifications []*Notification) []*NotificationResponse {
	out := make([]*NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, ToResponse(n))
	}
	return out
}
