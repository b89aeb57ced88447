package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project status values.
const (
	ProjectOpen       = "open"
	ProjectInProgress = "in-progress"
	ProjectCompleted  = "completed"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

// Project is a collaborative project with a capped member list. The owner
// is always the first member.
type Project struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title          string               `bson:"title" json:"title"`
	Description    string               `bson:"description" json:"description"`
	Owner          primitive.ObjectID   `bson:"owner" json:"owner"`
	Members        []primitive.ObjectID `bson:"members" json:"members"`
	TeamSize       int                  `bson:"teamSize" json:"teamSize"`
	RequiredSkills []string             `bson:"requiredSkills" json:"requiredSkills"`
	Status         string               `bson:"status" json:"status"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether id belongs to the project.
func (p *Project) HasMember(id primitive.ObjectID) bool {
	for _, m := range p.Members {
		if m == id {
			return true
		}
	}
	return false
}

// OpenSpots is the number of members that can still join.
func (p *Project) OpenSpots() int {
	n := p.TeamSize - len(p.Members)
	if n < 0 {
		return 0
	}
	return n
}

// ProjectView is a project with owner and members populated.
type ProjectView struct {
	ID             primitive.ObjectID `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Owner          UserSummary        `json:"owner"`
	Members        []UserSummary      `json:"members"`
	TeamSize       int                `json:"teamSize"`
	OpenSpots      int                `json:"openSpots"`
	RequiredSkills []string           `json:"requiredSkills"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}
