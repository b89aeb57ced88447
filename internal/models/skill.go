package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Skill levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// ValidLevel reports whether l is a known skill level.
func ValidLevel(l string) bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Enrollment records a learner joining a skill.
type Enrollment struct {
	User       primitive.ObjectID `bson:"user" json:"user"`
	EnrolledAt time.Time          `bson:"enrolledAt" json:"enrolledAt"`
}

// Review is a rating left by an enrolled learner.
type Review struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Skill is a shareable learning module.
type Skill struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Level         string             `bson:"level" json:"level"`
	Instructor    primitive.ObjectID `bson:"instructor" json:"instructor"`
	Enrollments   []Enrollment       `bson:"enrollments" json:"enrollments"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsEnrolled reports whether id is enrolled.
func (s *Skill) IsEnrolled(id primitive.ObjectID) bool {
	for _, e := range s.Enrollments {
		if e.User == id {
			return true
		}
	}
	return false
}

// HasReviewed reports whether id already left a review.
func (s *Skill) HasReviewed(id primitive.ObjectID) bool {
	for _, r := range s.Reviews {
		if r.User == id {
			return true
		}
	}
	return false
}

// AverageOf returns the mean rating rounded to one decimal.
func AverageOf(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return float64(int(avg*10+0.5)) / 10
}

// ReviewView is a review populated with its author.
type ReviewView struct {
	User      UserSummary `json:"user"`
	Rating    int         `json:"rating"`
	Comment   string      `json:"comment"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SkillView is a skill with instructor and reviewers populated.
type SkillView struct {
	ID              primitive.ObjectID `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Category        string             `json:"category"`
	Level           string             `json:"level"`
	Instructor      UserSummary        `json:"instructor"`
	EnrollmentCount int                `json:"enrollmentCount"`
	Enrolled        bool               `json:"enrolled"`
	Reviews         []ReviewView       `json:"reviews"`
	AverageRating   float64            `json:"averageRating"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}
