package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	TypeResourceCreated  = "resource_created"
	TypeResourceApproved = "resource_approved"
)

// Notification is an append-only feed record written for every resource event.
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type       string             `bson:"type" json:"type"`               // resource_created or resource_approved
	Message    string             `bson:"message" json:"message"`         // human readable summary
	ResourceID *string            `bson:"resource_id" json:"resource_id"` // resource the event is about
	CreatedBy  *string            `bson:"created_by" json:"created_by"`   // email of the acting user
	Semester   *int               `bson:"semester" json:"semester"`
	Subject    *string            `bson:"subject" json:"subject"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
