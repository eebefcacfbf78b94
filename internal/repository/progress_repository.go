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

type ProgressRepository struct {
	Coll *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Coll: db.Collection(database.InterventionProgressCollection)}
}

func (r *ProgressRepository) Create(ctx context.Context, p *model.InterventionProgress) error {
	p.Touch(time.Now())
	_, err := r.Coll.InsertOne(ctx, p)
	return errors.Wrap(err, "insert intervention progress")
}

func (r *ProgressRepository) FindByPlan(ctx context.Context, planID primitive.ObjectID) (*model.InterventionProgress, error) {
	var p model.InterventionProgress
	if err := r.Coll.FindOne(ctx, bson.M{"interventionPlanId": planID}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProgressRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	res, err := r.Coll.DeleteMany(ctx, bson.M{"interventionPlanId": planID})
	if err != nil {
		return 0, errors.Wrap(err, "delete intervention progress")
	}
	return res.DeletedCount, nil
}

// SyncWithPlan copies the plan's student and question count onto its progress
// row and returns the updated row.
func (r *ProgressRepository) SyncWithPlan(ctx context.Context, planID, studentID primitive.ObjectID, total int) (*model.InterventionProgress, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.InterventionProgress
	err := r.Coll.FindOneAndUpdate(ctx,
		bson.M{"interventionPlanId": planID},
		bson.M{"$set": bson.M{"studentId": studentID, "totalActivities": total, "updatedAt": time.Now()}},
		opts,
	).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// IncrementCounters bumps the counters with a single $inc so concurrent
// responses never lose an update, and returns the row after the change.
func (r *ProgressRepository) IncrementCounters(ctx context.Context, planID primitive.ObjectID, correct bool, at time.Time) (*model.InterventionProgress, error) {
	inc := bson.M{"completedActivities": 1}
	if correct {
		inc["correctAnswers"] = 1
	} else {
		inc["incorrectAnswers"] = 1
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.InterventionProgress
	err := r.Coll.FindOneAndUpdate(ctx,
		bson.M{"interventionPlanId": planID},
		bson.M{"$inc": inc, "$set": bson.M{"lastActivity": at, "updatedAt": at}},
		opts,
	).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// SaveDerived writes the percentages computed from p's counters. The write is
// skipped when the counters moved in the meantime; the newer writer owns the
// derived fields then.
func (r *ProgressRepository) SaveDerived(ctx context.Context, p *model.InterventionProgress) (bool, error) {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{
			"_id":                 p.ID,
			"completedActivities": p.CompletedActivities,
			"correctAnswers":      p.CorrectAnswers,
			"incorrectAnswers":    p.IncorrectAnswers,
			"totalActivities":     p.TotalActivities,
		},
		bson.M{"$set": bson.M{
			"percentComplete": p.PercentComplete,
			"percentCorrect":  p.PercentCorrect,
			"passedThreshold": p.PassedThreshold,
		}},
	)
	if err != nil {
		return false, errors.Wrap(err, "save derived progress")
	}
	return res.MatchedCount > 0, nil
}

type ResponseRepository struct {
	Coll *mongo.Collection
}

func NewResponseRepository(db *mongo.Database) *ResponseRepository {
	return &ResponseRepository{Coll: db.Collection(database.InterventionResponseCollection)}
}

func (r *ResponseRepository) Create(ctx context.Context, resp *model.InterventionResponse) error {
	resp.Touch(time.Now())
	_, err := r.Coll.InsertOne(ctx, resp)
	return errors.Wrap(err, "insert intervention response")
}

func (r *ResponseRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]model.InterventionResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "answeredAt", Value: 1}})
	var out []model.InterventionResponse
	if err := findAll(ctx, r.Coll, bson.M{"interventionPlanId": planID}, opts, &out); err != nil {
		return nil, errors.Wrap(err, "list intervention responses")
	}
	return out, nil
}

func (r *ResponseRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	res, err := r.Coll.DeleteMany(ctx, bson.M{"interventionPlanId": planID})
	if err != nil {
		return 0, errors.Wrap(err, "delete intervention responses")
	}
	return res.DeletedCount, nil
}
