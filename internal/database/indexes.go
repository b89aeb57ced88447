package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection        = "users"
	StudentsCollection     = "students"
	MentorsCollection      = "mentors"
	ProjectsCollection     = "projects"
	SkillsCollection       = "skills"
	MentorshipCollection   = "mentorship_requests"
	CertificatesCollection = "certificates"
	SessionsCollection     = "sessions"
)

// Indexes lists the indexes each collection needs.
func Indexes() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		StudentsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		MentorsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expertise", Value: 1}}},
		},
		ProjectsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "members", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		SkillsCollection: {
			{Keys: bson.D{{Key: "instructor", Value: 1}}},
			{Keys: bson.D{{Key: "enrollments.user", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "level", Value: 1}}},
		},
		MentorshipCollection: {
			{Keys: bson.D{{Key: "mentor", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "student", Value: 1}, {Key: "status", Value: 1}}},
			// at most one pending request per student/mentor pair
			{
				Keys:    bson.D{{Key: "student", Value: 1}, {Key: "mentor", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
		},
		CertificatesCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		SessionsCollection: {
			{Keys: bson.D{{Key: "refreshToken", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}
}

// EnsureIndexes creates all indexes; it is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for col, models := range Indexes() {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", col, err)
		}
	}
	return nil
}
