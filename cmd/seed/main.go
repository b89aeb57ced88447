// Command seed loads demo accounts, a skill and a project into MongoDB so a
// fresh environment has something to browse. Running it twice is harmless.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/skillbridge/skillbridge/backend/api/internal/apperrors"
	"github.com/skillbridge/skillbridge/backend/api/internal/collaboration"
	"github.com/skillbridge/skillbridge/backend/api/internal/config"
	"github.com/skillbridge/skillbridge/backend/api/internal/database"
	"github.com/skillbridge/skillbridge/backend/api/internal/models"
	"github.com/skillbridge/skillbridge/backend/api/internal/profiles"
	"github.com/skillbridge/skillbridge/backend/api/internal/skills"
	"github.com/skillbridge/skillbridge/backend/api/internal/users"
	"github.com/skillbridge/skillbridge/backend/api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	password := flag.String("password", "skillbridge-demo", "password for the demo accounts")
	flag.Parse()
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to create indexes: %v", err)
	}

	userSvc := users.NewService(users.NewMongoUserRepository(db.Collection(database.UsersCollection)))
	profileSvc := profiles.NewService(profiles.NewMongoRepository(
		db.Collection(database.StudentsCollection),
		db.Collection(database.MentorsCollection),
	), userSvc)
	skillSvc := skills.NewService(skills.NewMongoRepository(db.Collection(database.SkillsCollection)), userSvc)
	projectSvc := collaboration.NewService(collaboration.NewMongoRepository(db.Collection(database.ProjectsCollection)), userSvc)

	mentor := account(ctx, userSvc, users.SignupInput{Name: "Grace Mentor", Email: "mentor@skillbridge.dev", Password: *password, Role: models.RoleMentor})
	student := account(ctx, userSvc, users.SignupInput{Name: "Alan Student", Email: "student@skillbridge.dev", Password: *password, Role: models.RoleStudent})

	if _, err := profileSvc.UpdateMentor(ctx, mentor.ID, profiles.MentorInput{
		Expertise:       []string{"go", "distributed systems", "career"},
		ExperienceYears: 9,
		Company:         "SkillBridge",
		Designation:     "Staff Engineer",
		Availability:    "Weekday evenings",
	}); err != nil {
		logger.Fatalf("seed mentor profile: %v", err)
	}
	if _, err := profileSvc.UpdateStudent(ctx, student.ID, profiles.StudentInput{
		Institution: "State University",
		Course:      "Computer Science",
		YearOfStudy: 3,
		Interests:   []string{"backend", "databases"},
		Skills:      []string{"go", "sql"},
	}); err != nil {
		logger.Fatalf("seed student profile: %v", err)
	}

	const skillTitle = "Production Go Services"
	if !exists(ctx, db.Collection(database.SkillsCollection), bson.M{"title": skillTitle, "instructor": mentor.ID}) {
		title, desc, cat, level := skillTitle, "Build, test and operate HTTP services in Go.", "programming", models.LevelIntermediate
		if _, err := skillSvc.Create(ctx, mentor.ID, skills.SkillInput{Title: &title, Description: &desc, Category: &cat, Level: &level}); err != nil {
			logger.Fatalf("seed skill: %v", err)
		}
		logger.Infof("created skill %q", skillTitle)
	}

	const projectTitle = "Campus Study Groups"
	if !exists(ctx, db.Collection(database.ProjectsCollection), bson.M{"title": projectTitle, "owner": student.ID}) {
		title, desc, size := projectTitle, "Match students into study groups by course and schedule.", 4
		req := []string{"go", "react", "mongodb"}
		if _, err := projectSvc.Create(ctx, student.ID, collaboration.ProjectInput{Title: &title, Description: &desc, TeamSize: &size, RequiredSkills: &req}); err != nil {
			logger.Fatalf("seed project: %v", err)
		}
		logger.Infof("created project %q", projectTitle)
	}

	logger.Infof("seed complete: mentor=%s student=%s", mentor.Email, student.Email)
}

// account signs up, or logs in when the email is already registered.
func account(ctx context.Context, svc *users.Service, in users.SignupInput) *models.User {
	u, err := svc.Signup(ctx, in)
	if errors.Is(err, apperrors.ErrConflict) {
		u, err = svc.Authenticate(ctx, in.Email, in.Password)
	}
	if err != nil {
		logger.Fatalf("seed account %s: %v", in.Email, err)
	}
	logger.Infof("account ready: %s (%s)", u.Email, u.Role)
	return u
}

func exists(ctx context.Context, col *mongo.Collection, filter bson.M) bool {
	n, err := col.CountDocuments(ctx, filter)
	if err != nil {
		logger.Fatalf("count %s: %v", col.Name(), err)
	}
	return n > 0
}
