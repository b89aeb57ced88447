package mentorship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists mentorship requests.
type Repository interface {
	Create(ctx context.Context, r *models.MentorshipRequest) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.MentorshipRequest, error)
	HasPending(ctx context.Context, student, mentor primitive.ObjectID) (bool, error)
	List(ctx context.Context, f ListFilter) ([]models.MentorshipRequest, error)
	// Respond moves a pending request to status. It returns (nil, nil) when
	// the request is no longer pending.
	Respond(ctx context.Context, id primitive.ObjectID, status, response string, at time.Time) (*models.MentorshipRequest, error)
	// DeletePending removes a pending request. It reports whether one was removed.
	DeletePending(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// ListFilter selects requests by one party and optional status.
type ListFilter struct {
	Student primitive.ObjectID
	Mentor  primitive.ObjectID
	Status  string
}

func (f ListFilter) BSON() bson.M {
	q := bson.M{}
	if !f.Student.IsZero() {
		q["student"] = f.Student
	}
	if !f.Mentor.IsZero() {
		q["mentor"] = f.Mentor
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, req *models.MentorshipRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("pending request exists: %w", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.MentorshipRequest, error) {
	var out models.MentorshipRequest
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) HasPending(ctx context.Context, student, mentor primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"student": student, "mentor": mentor, "status": models.RequestPending}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRepository) List(ctx context.Context, f ListFilter) ([]models.MentorshipRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, f.BSON(), opts)
	if err != nil {
		return nil, err
	}
	var out []models.MentorshipRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Respond(ctx context.Context, id primitive.ObjectID, status, response string, at time.Time) (*models.MentorshipRequest, error) {
	filter := bson.M{"_id": id, "status": models.RequestPending}
	update := bson.M{"$set": bson.M{"status": status, "response": response, "respondedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.MentorshipRequest
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) DeletePending(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "status": models.RequestPending})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
