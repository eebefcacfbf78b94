package database

import (
	"context"
	"log"

	"literacy_backend/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	UsersCollection                = "users"
	TemplateQuestionsCollection    = "templates_questions"
	TemplateChoicesCollection      = "templates_choices"
	SentenceTemplatesCollection    = "sentence_templates"
	MainAssessmentCollection       = "main_assessment"
	InterventionPlansCollection    = "intervention_assessment"
	InterventionProgressCollection = "intervention_progress"
	InterventionResponseCollection = "intervention_responses"
	CategoryResultsCollection      = "category_results"
	PrescriptiveAnalysisCollection = "prescriptive_analysis"
)

func InitMongo(ctx context.Context, cfg *config.DatabaseConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	log.Println("MongoDB connection established")
	return client, client.Database(cfg.Name), nil
}

// EnsureIndexes creates the indexes the query paths rely on. Safe to re-run.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "idNumber", Value: 1}}},
			{Keys: bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}},
		},
		TemplateQuestionsCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
		},
		TemplateChoicesCollection: {
			{Keys: bson.D{{Key: "choiceType", Value: 1}}},
		},
		SentenceTemplatesCollection: {
			{Keys: bson.D{{Key: "readingLevel", Value: 1}}},
		},
		MainAssessmentCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "readingLevel", Value: 1}, {Key: "order", Value: 1}}},
		},
		InterventionPlansCollection: {
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "prescriptiveAnalysisId", Value: 1}}},
		},
		InterventionProgressCollection: {
			{
				Keys:    bson.D{{Key: "interventionPlanId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		InterventionResponseCollection: {
			{Keys: bson.D{{Key: "interventionPlanId", Value: 1}, {Key: "answeredAt", Value: 1}}},
		},
		CategoryResultsCollection: {
			{Keys: bson.D{{Key: "studentObjectId", Value: 1}, {Key: "assessmentDate", Value: -1}}},
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "assessmentDate", Value: -1}}},
		},
		PrescriptiveAnalysisCollection: {
			{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "categoryId", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
