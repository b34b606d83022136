package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyhub/internal/model"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "surveyhub"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	surveyColl := client.Database(dbName).Collection("surveys")

	min := 0.0
	max := 10.0
	satisfactionID := uuid.NewString()
	recommendID := uuid.NewString()
	reasonID := uuid.NewString()
	channelsID := uuid.NewString()
	visitID := uuid.NewString()

	now := time.Now()
	survey := model.Survey{
		ID:          uuid.NewString(),
		OwnerID:     "owner_seed",
		Title:       "Product Feedback",
		Slug:        "product-feedback",
		Description: "Tell us how the product is working for you.",
		Status:      model.SurveyStatusPublished,
		Settings: model.SurveySettings{
			AllowAnonymous:  true,
			ShowProgressBar: true,
		},
		Questions: []model.Question{
			{
				ID:       satisfactionID,
				Type:     model.QuestionTypeNumber,
				Label:    "How satisfied are you overall, from 0 to 10?",
				Required: true,
				Order:    1,
				Validation: &model.ValidationRules{
					Min: &min,
					Max: &max,
				},
			},
			{
				ID:       recommendID,
				Type:     model.QuestionTypeRadio,
				Label:    "Would you recommend us to a colleague?",
				Required: true,
				Order:    2,
				Options: []model.Option{
					{Label: "Yes", Value: "yes", Order: 1},
					{Label: "No", Value: "no", Order: 2},
				},
			},
			{
				ID:       reasonID,
				Type:     model.QuestionTypeTextarea,
				Label:    "What would have to change for you to recommend us?",
				Required: true,
				Order:    3,
				Logic: &model.LogicRule{
					Action: model.ActionShow,
					Conditions: []model.Condition{
						{QuestionID: recommendID, Operator: model.OpEquals, Value: "no"},
					},
				},
			},
			{
				ID:       channelsID,
				Type:     model.QuestionTypeCheckbox,
				Label:    "Where did you hear about us?",
				Required: false,
				Order:    4,
				Options: []model.Option{
					{Label: "Search", Value: "search", Order: 1},
					{Label: "Social media", Value: "social", Order: 2},
					{Label: "A friend", Value: "friend", Order: 3},
				},
			},
			{
				ID:       visitID,
				Type:     model.QuestionTypeDate,
				Label:    "When did you last use the product?",
				Required: false,
				Order:    5,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := surveyColl.InsertOne(ctx, survey); err != nil {
		log.Fatalf("Failed to insert demo survey: %v", err)
	}

	fmt.Printf("Seeded survey %s (slug %s)\n", survey.ID, survey.Slug)
}
