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

// CategoryResultRepository reads category_results through the raw collection;
// documents come from the assessment app and carry legacy student references.
type CategoryResultRepository struct {
	Coll *mongo.Collection
}

func NewCategoryResultRepository(db *mongo.Database) *CategoryResultRepository {
	return &CategoryResultRepository{Coll: db.Collection(database.CategoryResultsCollection)}
}

// ListByStudent returns the student's results, newest assessment first.
func (r *CategoryResultRepository) ListByStudent(ctx context.Context, keys StudentKeys) ([]model.CategoryResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assessmentDate", Value: -1}, {Key: "_id", Value: -1}})
	var out []model.CategoryResult
	if err := findAll(ctx, r.Coll, keys.filter(), opts, &out); err != nil {
		return nil, errors.Wrap(err, "list category results")
	}
	return out, nil
}

// ListMissingObjectID returns results that only carry the legacy studentId.
func (r *CategoryResultRepository) ListMissingObjectID(ctx context.Context) ([]model.CategoryResult, error) {
	filter := bson.M{
		"studentObjectId": bson.M{"$exists": false},
		"studentId":       bson.M{"$exists": true},
	}
	var out []model.CategoryResult
	if err := findAll(ctx, r.Coll, filter, options.Find(), &out); err != nil {
		return nil, errors.Wrap(err, "list unmigrated category results")
	}
	return out, nil
}

func (r *CategoryResultRepository) SetStudentObjectID(ctx context.Context, id, studentID primitive.ObjectID) error {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"studentObjectId": studentID}},
	)
	if err != nil {
		return errors.Wrap(err, "set category result studentObjectId")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type PrescriptiveAnalysisRepository struct {
	Coll *mongo.Collection
}

func NewPrescriptiveAnalysisRepository(db *mongo.Database) *PrescriptiveAnalysisRepository {
	return &PrescriptiveAnalysisRepository{Coll: db.Collection(database.PrescriptiveAnalysisCollection)}
}

func (r *PrescriptiveAnalysisRepository) FindByStudentAndCategory(ctx context.Context, studentID primitive.ObjectID, category model.Category) (*model.PrescriptiveAnalysis, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	var pa model.PrescriptiveAnalysis
	// older analyses store the category in its machine form
	filter := bson.M{
		"studentId":  studentID,
		"categoryId": bson.M{"$in": bson.A{category, category.MachineName()}},
	}
	err := r.Coll.FindOne(ctx, filter, opts).Decode(&pa)
	if err != nil {
		return nil, notFound(err)
	}
	return &pa, nil
}

func (r *PrescriptiveAnalysisRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]model.PrescriptiveAnalysis, error) {
	opts := options.Find().SetSort(bson.D{{Key: "categoryId", Value: 1}})
	var out []model.PrescriptiveAnalysis
	if err := findAll(ctx, r.Coll, bson.M{"studentId": studentID}, opts, &out); err != nil {
		return nil, errors.Wrap(err, "list prescriptive analyses")
	}
	return out, nil
}

// Upsert keeps one analysis per (student, category).
func (r *PrescriptiveAnalysisRepository) Upsert(ctx context.Context, pa *model.PrescriptiveAnalysis) error {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{
		"$set": bson.M{
			"readingLevel":    pa.ReadingLevel,
			"strengths":       pa.Strengths,
			"weaknesses":      pa.Weaknesses,
			"recommendations": pa.Recommendations,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{"createdAt": now, "createdBy": pa.CreatedBy},
	}
	err := r.Coll.FindOneAndUpdate(ctx,
		bson.M{"studentId": pa.StudentID, "categoryId": pa.CategoryID},
		update, opts,
	).Decode(pa)
	return errors.Wrap(err, "upsert prescriptive analysis")
}
