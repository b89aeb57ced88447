package certificates

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

// Repository persists certificate metadata; the files live in object storage.
type Repository interface {
	Create(ctx context.Context, c *models.Certificate) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Certificate, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, c *models.Certificate) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error) {
	var c models.Certificate
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Certificate, error) {
	cur, err := r.col.Find(ctx, bson.M{"owner": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Certificate
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
