package skills

import (
	"regexp"

	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sort keys accepted by GET /skills.
const (
	SortNewest  = "newest"
	SortRating  = "rating"
	SortPopular = "popular"
	SortTitle   = "title"
)

// Filter narrows the skill listing.
type Filter struct {
	Query      string
	Category   string
	Level      string
	Instructor primitive.ObjectID
	Enrolled   primitive.ObjectID
	Sort       string
	Page       paging.Params
}

func (f Filter) BSON() bson.M {
	q := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		q["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}, bson.M{"category": re}}
	}
	if f.Category != "" {
		q["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Category) + "$", Options: "i"}
	}
	if f.Level != "" {
		q["level"] = f.Level
	}
	if !f.Instructor.IsZero() {
		q["instructor"] = f.Instructor
	}
	if !f.Enrolled.IsZero() {
		q["enrollments.user"] = f.Enrolled
	}
	return q
}

func (f Filter) SortBSON() bson.D {
	switch f.Sort {
	case SortRating:
		return bson.D{{Key: "averageRating", Value: -1}, {Key: "createdAt", Value: -1}}
	case SortPopular:
		return bson.D{{Key: "enrollmentCount", Value: -1}, {Key: "createdAt", Value: -1}}
	case SortTitle:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func (f Filter) Pipeline() mongo.Pipeline {
	p := f.Page.Normalize()
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$addFields", Value: bson.M{"enrollmentCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$enrollments", bson.A{}}}}}}},
		{{Key: "$sort", Value: f.SortBSON()}},
		{{Key: "$skip", Value: p.Skip()}},
		{{Key: "$limit", Value: int64(p.Limit)}},
		{{Key: "$project", Value: bson.M{"enrollmentCount": 0}}},
	}
}

// roundedAverage computes the mean review rating rounded half up to one
// decimal, matching models.AverageOf.
func roundedAverage() bson.M {
	avg := bson.M{"$ifNull": bson.A{bson.M{"$avg": "$reviews.rating"}, 0}}
	return bson.M{"$divide": bson.A{
		bson.M{"$trunc": bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{avg, 10}}, 0.5}}},
		10,
	}}
}
