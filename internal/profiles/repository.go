package profiles

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists the role-specific profile documents. Getters return
// (nil, nil) when no profile exists.
type Repository interface {
	UpsertStudent(ctx context.Context, s *models.Student) (*models.Student, error)
	GetStudent(ctx context.Context, user primitive.ObjectID) (*models.Student, error)
	UpsertMentor(ctx context.Context, m *models.Mentor) (*models.Mentor, error)
	GetMentor(ctx context.Context, user primitive.ObjectID) (*models.Mentor, error)
	ListMentors(ctx context.Context, f MentorFilter) ([]models.Mentor, int64, error)
}

// MentorFilter narrows GET /api/Mentor.
type MentorFilter struct {
	Query         string
	Expertise     string
	MinExperience int
	Sort          string
	Page          paging.Params
}

// BSON builds the query document.
func (f MentorFilter) BSON() bson.M {
	q := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"expertise": re},
			bson.M{"company": re},
			bson.M{"designation": re},
		}
	}
	if f.Expertise != "" {
		q["expertise"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Expertise) + "$", Options: "i"}
	}
	if f.MinExperience > 0 {
		q["experienceYears"] = bson.M{"$gte": f.MinExperience}
	}
	return q
}

// SortBSON maps the sort key to a sort document; unknown keys sort newest first.
func (f MentorFilter) SortBSON() bson.D {
	if f.Sort == "experience" {
		return bson.D{{Key: "experienceYears", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

// MongoRepository implements Repository with the students and mentors collections.
type MongoRepository struct {
	students *mongo.Collection
	mentors  *mongo.Collection
}

func NewMongoRepository(students, mentors *mongo.Collection) *MongoRepository {
	return &MongoRepository{students: students, mentors: mentors}
}

func upsertOpts() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}

func (r *MongoRepository) UpsertStudent(ctx context.Context, s *models.Student) (*models.Student, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"institution": s.Institution,
			"course":      s.Course,
			"yearOfStudy": s.YearOfStudy,
			"interests":   s.Interests,
			"skills":      s.Skills,
			"github":      s.GitHub,
			"linkedin":    s.LinkedIn,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	var out models.Student
	if err := r.students.FindOneAndUpdate(ctx, bson.M{"user": s.User}, update, upsertOpts()).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) GetStudent(ctx context.Context, user primitive.ObjectID) (*models.Student, error) {
	var out models.Student
	if err := r.students.FindOne(ctx, bson.M{"user": user}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) UpsertMentor(ctx context.Context, m *models.Mentor) (*models.Mentor, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"expertise":       m.Expertise,
			"experienceYears": m.ExperienceYears,
			"company":         m.Company,
			"designation":     m.Designation,
			"availability":    m.Availability,
			"linkedin":        m.LinkedIn,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	var out models.Mentor
	if err := r.mentors.FindOneAndUpdate(ctx, bson.M{"user": m.User}, update, upsertOpts()).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) GetMentor(ctx context.Context, user primitive.ObjectID) (*models.Mentor, error) {
	var out models.Mentor
	if err := r.mentors.FindOne(ctx, bson.M{"user": user}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) ListMentors(ctx context.Context, f MentorFilter) ([]models.Mentor, int64, error) {
	q := f.BSON()
	total, err := r.mentors.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	p := f.Page.Normalize()
	opts := options.Find().SetSort(f.SortBSON()).SetSkip(p.Skip()).SetLimit(int64(p.Limit))
	cur, err := r.mentors.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []models.Mentor
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
