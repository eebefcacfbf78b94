package repository

import (
	"context"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/pkg/database"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TemplateRepository covers the three template collections the authoring
// wizard draws from.
type TemplateRepository struct {
	Questions *mongo.Collection
	Choices   *mongo.Collection
	Sentences *mongo.Collection
	Main      *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{
		Questions: db.Collection(database.TemplateQuestionsCollection),
		Choices:   db.Collection(database.TemplateChoicesCollection),
		Sentences: db.Collection(database.SentenceTemplatesCollection),
		Main:      db.Collection(database.MainAssessmentCollection),
	}
}

// Question templates

func (r *TemplateRepository) ListQuestions(ctx context.Context, category model.Category) ([]model.TemplateQuestion, error) {
	filter := bson.M{"isActive": true}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "questionType", Value: 1}, {Key: "createdAt", Value: 1}})
	var out []model.TemplateQuestion
	if err := findAll(ctx, r.Questions, filter, opts, &out); err != nil {
		return nil, errors.Wrap(err, "list question templates")
	}
	return out, nil
}

func (r *TemplateRepository) FindQuestion(ctx context.Context, id primitive.ObjectID) (*model.TemplateQuestion, error) {
	var q model.TemplateQuestion
	if err := r.Questions.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *TemplateRepository) CreateQuestion(ctx context.Context, q *model.TemplateQuestion) error {
	q.Touch(time.Now())
	_, err := r.Questions.InsertOne(ctx, q)
	return errors.Wrap(err, "insert question template")
}

func (r *TemplateRepository) UpdateQuestion(ctx context.Context, q *model.TemplateQuestion) error {
	q.UpdatedAt = time.Now()
	return replaceByID(ctx, r.Questions, q.ID, q)
}

func (r *TemplateRepository) DeleteQuestion(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.Questions, id)
}

// Choice templates

func (r *TemplateRepository) ListChoices(ctx context.Context, choiceTypes []string) ([]model.TemplateChoice, error) {
	filter := bson.M{"isActive": true}
	if len(choiceTypes) > 0 {
		filter["choiceType"] = bson.M{"$in": choiceTypes}
	}
	opts := options.Find().SetSort(bson.D{{Key: "choiceType", Value: 1}, {Key: "choiceValue", Value: 1}})
	var out []model.TemplateChoice
	if err := findAll(ctx, r.Choices, filter, opts, &out); err != nil {
		return nil, errors.Wrap(err, "list choice templates")
	}
	return out, nil
}

func (r *TemplateRepository) FindChoice(ctx context.Context, id primitive.ObjectID) (*model.TemplateChoice, error) {
	var c model.TemplateChoice
	if err := r.Choices.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *TemplateRepository) CreateChoice(ctx context.Context, c *model.TemplateChoice) error {
	c.Touch(time.Now())
	_, err := r.Choices.InsertOne(ctx, c)
	return errors.Wrap(err, "insert choice template")
}

func (r *TemplateRepository) UpdateChoice(ctx context.Context, c *model.TemplateChoice) error {
	c.UpdatedAt = time.Now()
	return replaceByID(ctx, r.Choices, c.ID, c)
}

func (r *TemplateRepository) DeleteChoice(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.Choices, id)
}

// Sentence templates

func (r *TemplateRepository) ListSentences(ctx context.Context, level model.ReadingLevel) ([]model.SentenceTemplate, error) {
	filter := bson.M{"isActive": true}
	if level != "" {
		filter["readingLevel"] = level
	}
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	var out []model.SentenceTemplate
	if err := findAll(ctx, r.Sentences, filter, opts, &out); err != nil {
		return nil, errors.Wrap(err, "list sentence templates")
	}
	return out, nil
}

func (r *TemplateRepository) FindSentence(ctx context.Context, id primitive.ObjectID) (*model.SentenceTemplate, error) {
	var s model.SentenceTemplate
	if err := r.Sentences.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *TemplateRepository) CreateSentence(ctx context.Context, s *model.SentenceTemplate) error {
	s.Touch(time.Now())
	_, err := r.Sentences.InsertOne(ctx, s)
	return errors.Wrap(err, "insert sentence template")
}

func (r *TemplateRepository) UpdateSentence(ctx context.Context, s *model.SentenceTemplate) error {
	s.UpdatedAt = time.Now()
	return replaceByID(ctx, r.Sentences, s.ID, s)
}

func (r *TemplateRepository) DeleteSentence(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.Sentences, id)
}

// Main assessment

func (r *TemplateRepository) ListMainAssessment(ctx context.Context, category model.Category, level model.ReadingLevel) ([]model.MainAssessmentQuestion, error) {
	filter := bson.M{"isActive": bson.M{"$ne": false}}
	if category != "" {
		filter["category"] = category
	}
	if level != "" {
		filter["readingLevel"] = level
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	var out []model.MainAssessmentQuestion
	if err := findAll(ctx, r.Main, filter, opts, &out); err != nil {
		return nil, errors.Wrap(err, "list main assessment questions")
	}
	return out, nil
}

func (r *TemplateRepository) FindMainAssessment(ctx context.Context, id primitive.ObjectID) (*model.MainAssessmentQuestion, error) {
	var q model.MainAssessmentQuestion
	if err := r.Main.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return errors.Wrapf(err, "replace %s", coll.Name())
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete %s", coll.Name())
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
