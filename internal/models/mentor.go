package models

import "time"

// Mentor represents an industry mentor attached to worklets.
type Mentor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact,omitempty"`
	Team      string    `json:"team,omitempty"`
	Expertise string    `json:"expertise,omitempty"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMentorRequest is the payload for registering a mentor.
type CreateMentorRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Contact   string `json:"contact" binding:"max=50"`
	Team      string `json:"team" binding:"max=100"`
	Expertise string `json:"expertise" binding:"max=255"`
}

// UpdateMentorRequest is the payload for editing a mentor. Nil fields
// are left unchanged.
type UpdateMentorRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	Contact   *string `json:"contact" binding:"omitempty,max=50"`
	Team      *string `json:"team" binding:"omitempty,max=100"`
	Expertise *string `json:"expertise" binding:"omitempty,max=255"`
	IsActive  *bool   `json:"is_active"`
}

// UploadMentorPhotoRequest carries a base64 image for the mentor profile.
type UploadMentorPhotoRequest struct {
	ImageData   string `json:"image_data" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}
