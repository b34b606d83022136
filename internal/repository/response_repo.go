package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyhub/internal/model"
)

// ResponseRepo handles MongoDB operations for survey responses. Answers live
// embedded in the response document, so every write here is atomic: a submit
// or a draft replacement lands completely or not at all.
type ResponseRepo interface {
	Insert(ctx context.Context, response *model.SurveyResponse) error
	Replace(ctx context.Context, response *model.SurveyResponse) error
	GetByID(ctx context.Context, id string) (*model.SurveyResponse, error)
	GetByUUID(ctx context.Context, uuid string) (*model.SurveyResponse, error)
	ListBySurvey(ctx context.Context, surveyID string, status model.ResponseStatus) ([]*model.SurveyResponse, error)
	CountBySurvey(ctx context.Context, surveyID string) (int64, error)
	HasSubmitted(ctx context.Context, surveyID, userID string) (bool, error)
	DeleteBySurvey(ctx context.Context, surveyID string) error
	EnsureIndexes(ctx context.Context) error
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

// EnsureIndexes creates the uniqueness guarantees the submission flow relies
// on. The partial (surveyId, userId) index is the real guard against the
// duplicate-submission race; the service-level pre-check is an optimization.
func (r *responseRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": model.ResponseStatusSubmitted,
					"userId": bson.M{"$exists": true},
				}),
		},
		{
			Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	return err
}

func (r *responseRepo) Insert(ctx context.Context, response *model.SurveyResponse) error {
	now := time.Now()
	response.CreatedAt = now
	response.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, response)
	return err
}

func (r *responseRepo) Replace(ctx context.Context, response *model.SurveyResponse) error {
	response.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": response.ID}, response)
	return err
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.SurveyResponse, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *responseRepo) GetByUUID(ctx context.Context, uuid string) (*model.SurveyResponse, error) {
	return r.findOne(ctx, bson.M{"uuid": uuid})
}

func (r *responseRepo) findOne(ctx context.Context, filter bson.M) (*model.SurveyResponse, error) {
	var response model.SurveyResponse
	err := r.collection.FindOne(ctx, filter).Decode(&response)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepo) ListBySurvey(ctx context.Context, surveyID string, status model.ResponseStatus) ([]*model.SurveyResponse, error) {
	filter := bson.M{"surveyId": surveyID}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.SurveyResponse
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) CountBySurvey(ctx context.Context, surveyID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"surveyId": surveyID})
}

func (r *responseRepo) HasSubmitted(ctx context.Context, surveyID, userID string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{
		"surveyId": surveyID,
		"userId":   userID,
		"status":   model.ResponseStatusSubmitted,
	}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *responseRepo) DeleteBySurvey(ctx context.Context, surveyID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"surveyId": surveyID})
	return err
}

// IsDup reports whether err is a storage-level unique-constraint violation.
func IsDup(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
