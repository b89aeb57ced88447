package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mentorship request status values.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// MentorshipRequest records a student's request to a mentor.
type MentorshipRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Student     primitive.ObjectID `bson:"student" json:"student"`
	Mentor      primitive.ObjectID `bson:"mentor" json:"mentor"`
	Topic       string             `bson:"topic" json:"topic"`
	Message     string             `bson:"message" json:"message"`
	Status      string             `bson:"status" json:"status"`
	Response    string             `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	RespondedAt *time.Time         `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

// MentorshipRequestView is a request with both parties populated.
type MentorshipRequestView struct {
	ID          primitive.ObjectID `json:"id"`
	Student     UserSummary        `json:"student"`
	Mentor      UserSummary        `json:"mentor"`
	Topic       string             `json:"topic"`
	Message     string             `json:"message"`
	Status      string             `json:"status"`
	Response    string             `json:"response,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	RespondedAt *time.Time         `json:"respondedAt,omitempty"`
}
