package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student holds the student-specific profile linked to a User.
type Student struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Institution string             `bson:"institution" json:"institution"`
	Course      string             `bson:"course" json:"course"`
	YearOfStudy int                `bson:"yearOfStudy" json:"yearOfStudy"`
	Interests   []string           `bson:"interests" json:"interests"`
	Skills      []string           `bson:"skills" json:"skills"`
	GitHub      string             `bson:"github,omitempty" json:"github,omitempty"`
	LinkedIn    string             `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Mentor holds the mentor-specific profile linked to a User.
type Mentor struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Expertise       []string           `bson:"expertise" json:"expertise"`
	ExperienceYears int                `bson:"experienceYears" json:"experienceYears"`
	Company         string             `bson:"company" json:"company"`
	Designation     string             `bson:"designation" json:"designation"`
	Availability    string             `bson:"availability" json:"availability"`
	LinkedIn        string             `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MentorView is a mentor profile populated with its user.
type MentorView struct {
	Mentor
	UserInfo UserSummary `json:"userInfo"`
}
