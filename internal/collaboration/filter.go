package collaboration

import (
	"regexp"

	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sort keys accepted by GET /projects.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortTitle  = "title"
	SortSpots  = "spots"
)

// ProjectFilter narrows the project listing.
type ProjectFilter struct {
	Query  string
	Skill  string
	Status string
	Owner  primitive.ObjectID
	Member primitive.ObjectID
	Sort   string
	Page   paging.Params
}

// BSON builds the $match document.
func (f ProjectFilter) BSON() bson.M {
	q := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		q["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}}
	}
	if f.Skill != "" {
		q["requiredSkills"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Skill) + "$", Options: "i"}
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if !f.Owner.IsZero() {
		q["owner"] = f.Owner
	}
	if !f.Member.IsZero() {
		q["members"] = f.Member
	}
	return q
}

// SortBSON maps the sort key to a sort document. "spots" relies on the
// openSpots field added by Pipeline.
func (f ProjectFilter) SortBSON() bson.D {
	switch f.Sort {
	case SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case SortTitle:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	case SortSpots:
		return bson.D{{Key: "openSpots", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// Pipeline is the aggregation used to list one page of projects.
func (f ProjectFilter) Pipeline() mongo.Pipeline {
	p := f.Page.Normalize()
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$addFields", Value: bson.M{"openSpots": bson.M{"$subtract": bson.A{"$teamSize", bson.M{"$size": "$members"}}}}}},
		{{Key: "$sort", Value: f.SortBSON()}},
		{{Key: "$skip", Value: p.Skip()}},
		{{Key: "$limit", Value: int64(p.Limit)}},
		{{Key: "$project", Value: bson.M{"openSpots": 0}}},
	}
}

// joinFilter matches a project the user can still join. The size predicate
// lives in the filter so concurrent joins cannot overfill the team.
func joinFilter(id, user primitive.ObjectID) bson.M {
	return bson.M{
		"_id":     id,
		"status":  bson.M{"$ne": models.ProjectCompleted},
		"members": bson.M{"$ne": user},
		"$expr":   bson.M{"$lt": bson.A{bson.M{"$size": "$members"}, "$teamSize"}},
	}
}
