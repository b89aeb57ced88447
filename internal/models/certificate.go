package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Certificate is an uploaded credential file owned by a user.
type Certificate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Title       string             `bson:"title" json:"title"`
	Issuer      string             `bson:"issuer" json:"issuer"`
	IssuedAt    *time.Time         `bson:"issuedAt,omitempty" json:"issuedAt,omitempty"`
	ObjectKey   string             `bson:"objectKey" json:"-"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
