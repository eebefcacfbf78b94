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

type InterventionRepository struct {
	Coll *mongo.Collection
}

func NewInterventionRepository(db *mongo.Database) *InterventionRepository {
	return &InterventionRepository{Coll: db.Collection(database.InterventionPlansCollection)}
}

func (r *InterventionRepository) Create(ctx context.Context, p *model.InterventionPlan) error {
	p.Touch(time.Now())
	_, err := r.Coll.InsertOne(ctx, p)
	return errors.Wrap(err, "insert intervention")
}

func (r *InterventionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.InterventionPlan, error) {
	var p model.InterventionPlan
	if err := r.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *InterventionRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]model.InterventionPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var out []model.InterventionPlan
	if err := findAll(ctx, r.Coll, bson.M{"studentId": studentID}, opts, &out); err != nil {
		return nil, errors.Wrap(err, "list interventions by student")
	}
	return out, nil
}

// FindLatestByStudentAndCategory returns the newest plan for the pair.
func (r *InterventionRepository) FindLatestByStudentAndCategory(ctx context.Context, studentID primitive.ObjectID, category model.Category) (*model.InterventionPlan, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var p model.InterventionPlan
	err := r.Coll.FindOne(ctx, bson.M{"studentId": studentID, "category": category}, opts).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// statusIn matches any of the given statuses. Legacy plans saved without a
// status count as drafts.
func statusIn(from []model.PlanStatus) bson.M {
	in := bson.A{}
	for _, st := range from {
		in = append(in, st)
		if st == model.PlanDraft {
			in = append(in, "", nil)
		}
	}
	return bson.M{"$in": in}
}

// UpdateDraft replaces the plan only while it is still a draft and reports
// whether it did.
func (r *InterventionRepository) UpdateDraft(ctx context.Context, p *model.InterventionPlan) (bool, error) {
	p.UpdatedAt = time.Now()
	res, err := r.Coll.ReplaceOne(ctx, bson.M{"_id": p.ID, "status": statusIn([]model.PlanStatus{model.PlanDraft})}, p)
	if err != nil {
		return false, errors.Wrap(err, "update draft intervention")
	}
	return res.MatchedCount > 0, nil
}

func (r *InterventionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.Coll, id)
}

// TransitionStatus moves the plan to `to` only if its current status is one of
// `from`, stamping pushedAt when given. It reports whether a document changed.
func (r *InterventionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []model.PlanStatus, to model.PlanStatus, pushedAt *time.Time) (bool, error) {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	if pushedAt != nil {
		set["pushedAt"] = *pushedAt
	}
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": statusIn(from)},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, errors.Wrap(err, "transition intervention status")
	}
	return res.MatchedCount > 0, nil
}

// LinkPrescriptiveAnalysis sets prescriptiveAnalysisId only while the plan has
// none. Other fields are left as stored.
func (r *InterventionRepository) LinkPrescriptiveAnalysis(ctx context.Context, id, analysisID primitive.ObjectID) (bool, error) {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": id, "prescriptiveAnalysisId": nil},
		bson.M{"$set": bson.M{"prescriptiveAnalysisId": analysisID, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, errors.Wrap(err, "link prescriptive analysis")
	}
	return res.ModifiedCount > 0, nil
}

// FillChoiceDescriptions writes description onto every choice of the given
// question type and correctness whose description is missing or empty.
func (r *InterventionRepository) FillChoiceDescriptions(ctx context.Context, id primitive.ObjectID, qt model.QuestionType, isCorrect bool, description string) (bool, error) {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
		bson.M{"q.questionType": qt},
		bson.M{"c.isCorrect": isCorrect, "c.description": bson.M{"$in": bson.A{nil, ""}}},
	}})
	missing := bson.M{"isCorrect": isCorrect, "description": bson.M{"$in": bson.A{nil, ""}}}
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": id, "questions": bson.M{"$elemMatch": bson.M{
			"questionType": qt,
			"choices":      bson.M{"$elemMatch": missing},
		}}},
		bson.M{"$set": bson.M{
			"questions.$[q].choices.$[c].description": description,
			"updatedAt": time.Now(),
		}},
		opts,
	)
	if err != nil {
		return false, errors.Wrap(err, "fill choice descriptions")
	}
	return res.ModifiedCount > 0, nil
}

func (r *InterventionRepository) SetStudentNumberIfMissing(ctx context.Context, id primitive.ObjectID, studentNumber string) error {
	_, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": id, "$or": bson.A{
			bson.M{"studentNumber": bson.M{"$exists": false}},
			bson.M{"studentNumber": ""},
		}},
		bson.M{"$set": bson.M{"studentNumber": studentNumber, "updatedAt": time.Now()}},
	)
	return errors.Wrap(err, "set intervention student number")
}

// ForEach streams every plan to fn; used by the backfill.
func (r *InterventionRepository) ForEach(ctx context.Context, fn func(p *model.InterventionPlan) error) error {
	cur, err := r.Coll.Find(ctx, bson.M{})
	if err != nil {
		return errors.Wrap(err, "scan interventions")
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p model.InterventionPlan
		if err := cur.Decode(&p); err != nil {
			return errors.Wrap(err, "decode intervention")
		}
		if err := fn(&p); err != nil {
			return err
		}
	}
	return cur.Err()
}
