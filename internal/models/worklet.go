package models

import "time"

// WorkletStatus is the lifecycle state of a worklet.
type WorkletStatus string

const (
	WorkletStatusDraft     WorkletStatus = "draft"
	WorkletStatusActive    WorkletStatus = "active"
	WorkletStatusCompleted WorkletStatus = "completed"
)

// Worklet is a mentored student project.
type Worklet struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      WorkletStatus `json:"status"`
	MentorID    int64         `json:"mentor_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CreateWorkletRequest is the payload for creating a worklet.
type CreateWorkletRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=draft active completed"`
	MentorID    int64  `json:"mentor_id" binding:"required,gt=0"`
}

// UpdateWorkletRequest is the payload for editing a worklet. Nil fields
// are left unchanged.
type UpdateWorkletRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=draft active completed"`
	MentorID    *int64  `json:"mentor_id" binding:"omitempty,gt=0"`
}
