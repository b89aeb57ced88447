package skills

import (
	"context"
	"errors"
	"time"

	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists skills. Conditional mutators return (nil, nil) when
// their preconditions did not hold.
type Repository interface {
	Create(ctx context.Context, s *models.Skill) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Skill, error)
	List(ctx context.Context, f Filter) ([]models.Skill, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Skill, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	// Enroll adds user unless it is the instructor or already enrolled.
	Enroll(ctx context.Context, id, user primitive.ObjectID, at time.Time) (*models.Skill, error)
	Unenroll(ctx context.Context, id, user primitive.ObjectID) (*models.Skill, error)
	// AddReview appends r when its author is enrolled and has not reviewed
	// yet, recomputing averageRating in the same update.
	AddReview(ctx context.Context, id primitive.ObjectID, r models.Review) (*models.Skill, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *models.Skill) error {
	now := time.Now().UTC()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.CreatedAt, s.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	var s models.Skill
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) List(ctx context.Context, f Filter) ([]models.Skill, int64, error) {
	total, err := r.col.CountDocuments(ctx, f.BSON())
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Aggregate(ctx, f.Pipeline())
	if err != nil {
		return nil, 0, err
	}
	var out []models.Skill
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*models.Skill, error) {
	var s models.Skill
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Skill, error) {
	set["updatedAt"] = time.Now().UTC()
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) Enroll(ctx context.Context, id, user primitive.ObjectID, at time.Time) (*models.Skill, error) {
	filter := bson.M{
		"_id":              id,
		"instructor":       bson.M{"$ne": user},
		"enrollments.user": bson.M{"$ne": user},
	}
	update := bson.M{
		"$push": bson.M{"enrollments": models.Enrollment{User: user, EnrolledAt: at}},
		"$set":  bson.M{"updatedAt": at},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *MongoRepository) Unenroll(ctx context.Context, id, user primitive.ObjectID) (*models.Skill, error) {
	filter := bson.M{"_id": id, "enrollments.user": user}
	update := bson.M{
		"$pull": bson.M{"enrollments": bson.M{"user": user}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *MongoRepository) AddReview(ctx context.Context, id primitive.ObjectID, rev models.Review) (*models.Skill, error) {
	filter := bson.M{
		"_id":              id,
		"enrollments.user": rev.User,
		"reviews.user":     bson.M{"$ne": rev.User},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
				bson.A{bson.M{"$literal": rev}},
			}},
			"updatedAt": rev.CreatedAt,
		}}},
		{{Key: "$set", Value: bson.M{"averageRating": roundedAverage()}}},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}
