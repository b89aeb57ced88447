package collaboration

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

// Repository persists projects. Mutators return (nil, nil) when their
// filter did not match.
type Repository interface {
	Create(ctx context.Context, p *models.Project) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error)
	// Update applies set. When set carries teamSize the update only
	// matches while the current member count fits.
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	Join(ctx context.Context, id, user primitive.ObjectID) (*models.Project, error)
	// RemoveMember pulls user unless user owns the project.
	RemoveMember(ctx context.Context, id, user primitive.ObjectID) (*models.Project, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func (r *MongoRepository) Create(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) List(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error) {
	total, err := r.col.CountDocuments(ctx, f.BSON())
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Aggregate(ctx, f.Pipeline())
	if err != nil {
		return nil, 0, err
	}
	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Project, error) {
	var p models.Project
	if err := r.col.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Project, error) {
	filter := bson.M{"_id": id}
	if size, ok := set["teamSize"]; ok {
		filter["$expr"] = bson.M{"$lte": bson.A{bson.M{"$size": "$members"}, size}}
	}
	set["updatedAt"] = time.Now().UTC()
	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) Join(ctx context.Context, id, user primitive.ObjectID) (*models.Project, error) {
	update := bson.M{
		"$addToSet": bson.M{"members": user},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, joinFilter(id, user), update)
}

func (r *MongoRepository) RemoveMember(ctx context.Context, id, user primitive.ObjectID) (*models.Project, error) {
	filter := bson.M{"_id": id, "owner": bson.M{"$ne": user}, "members": user}
	update := bson.M{
		"$pull": bson.M{"members": user},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}
