package resource

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moderation statuses. Rejected is part of the schema but no operation sets it.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Resource is an academic resource uploaded for moderation.
type Resource struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  *string            `bson:"description" json:"description"`
	Semester     int                `bson:"semester" json:"semester"` // 1-8
	Subject      string             `bson:"subject" json:"subject"`
	Tags         []string           `bson:"tags" json:"tags"`         // order kept, duplicates allowed
	FileURL      *string            `bson:"file_url" json:"file_url"` // opaque, never fetched
	ContentURL   *string            `bson:"content_url" json:"content_url"`
	UploadedBy   string             `bson:"uploaded_by" json:"uploaded_by"`
	UploaderName *string            `bson:"uploader_name" json:"uploader_name"`
	Status       string             `bson:"status" json:"status"`
	ApprovedBy   *string            `bson:"approved_by" json:"approved_by"`
	ApprovedAt   *time.Time         `bson:"approved_at" json:"approved_at"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateResourceRequest is the upload body.
type CreateResourceRequest struct {
	Title        string   `json:"title" validate:"required"`
	Description  *string  `json:"description"`
	Semester     int      `json:"semester" validate:"required,min=1,max=8"`
	Subject      string   `json:"subject" validate:"required"`
	Tags         []string `json:"tags"`
	FileURL      *string  `json:"file_url"`
	ContentURL   *string  `json:"content_url"`
	UploadedBy   string   `json:"uploaded_by" validate:"required,email"`
	UploaderName *string  `json:"uploader_name"`
}

// ApproveRequest is the moderation body.
type ApproveRequest struct {
	ApprovedBy string `json:"approved_by" validate:"required,email"`
}

// ListFilter narrows resource listings. Empty strings and a nil Semester do not filter.
type ListFilter struct {
	Semester   *int
	Subject    string
	Status     string
	UploadedBy string
	Limit      int64 // 0 means no limit
}
