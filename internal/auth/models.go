package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may log in with.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// DefaultDepartment is stamped on every user.
const DefaultDepartment = "CSE"

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"` // upsert key
	Role       string             `bson:"role" json:"role"`
	Semester   *int               `bson:"semester" json:"semester"` // 1-8, meaningful for students
	Department string             `bson:"department" json:"department"`
	IsActive   bool               `bson:"is_active" json:"is_active"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=student teacher admin"`
	Semester *int   `json:"semester" validate:"omitempty,min=1,max=8"`
}
