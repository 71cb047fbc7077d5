package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/metaspex/interviews/internal/cache"
	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/repository"
)

// Seeds one sample template question, a questionnaire that references
// it alongside a few structural question kinds, and a campaign running
// it, so a fresh environment has something to start an interview against.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("interviews")
	store := repository.NewStore(db)

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	host := expr.NewGojaHost()
	templateRepo := repository.NewTemplateRepository(store, compiler.New(host, nil))
	questionnaireRepo := repository.NewQuestionnaireRepository(
		store,
		compiler.New(host, nil),
		templateRepo,
		cache.NewQuestionnaireCache(rdb),
		cache.NewQuestionnaireLocalizationCache(rdb),
	)
	campaignRepo := repository.NewCampaignRepository(store, questionnaireRepo, cache.NewCampaignCache(rdb))

	cat, err := templateRepo.CreateCategory(ctx, "Demographics")
	if err != nil {
		log.Fatalf("Failed to create category: %v", err)
	}

	ageQuestion := &compiler.SourceTemplateQuestion{
		CategoryID: cat.ID,
		Label:      "age_bracket",
		Type:       "select",
		Options: []compiler.SourceOption{
			{Label: "18-24"},
			{Label: "25-34"},
			{Label: "35-44"},
			{Label: "45-54"},
			{Label: "55+"},
		},
	}
	tq, err := templateRepo.CreateQuestion(ctx, cat.ID, ageQuestion)
	if err != nil {
		log.Fatalf("Failed to create template question: %v", err)
	}

	ageLocalization := &compiler.SourceTemplateQuestionLocalization{
		Language: "en",
		Text:     "What is your age bracket?",
		Options: []compiler.SourceOption{
			{Label: "18-24"},
			{Label: "25-34"},
			{Label: "35-44"},
			{Label: "45-54"},
			{Label: "55+"},
		},
	}
	if _, err := templateRepo.CreateQuestionLocalization(ctx, tq, ageLocalization); err != nil {
		log.Fatalf("Failed to create template question localization: %v", err)
	}

	src := &compiler.SourceQuestionnaire{
		Name:     "smartphone_launch_feedback",
		Language: "en",
		Title:    "Smartphone Launch Feedback",
		Questions: []compiler.SourceQuestion{
			{
				Label: "welcome",
				Type:  "message",
				Text:  "Thanks for taking a moment to share your thoughts on your new phone.",
				Transitions: []compiler.SourceTransition{
					{Destination: "age"},
				},
			},
			{
				Label:    "age",
				Type:     "from_template",
				Template: tq.Label,
				Transitions: []compiler.SourceTransition{
					{Destination: "satisfaction"},
				},
			},
			{
				Label:      "satisfaction",
				Type:       "select",
				Text:       "On a scale from 1 to 5, how satisfied are you with the phone overall?",
				HasComment: true,
				Options: []compiler.SourceOption{
					{Label: "1 - very unsatisfied"},
					{Label: "2"},
					{Label: "3"},
					{Label: "4"},
					{Label: "5 - very satisfied"},
				},
				Transitions: []compiler.SourceTransition{
					{
						Condition:   &compiler.SourceFunction{Code: "satisfaction.choice.index <= 1"},
						Destination: "improvement",
					},
					{Destination: "closing"},
				},
			},
			{
				Label: "improvement",
				Type:  "input",
				Text:  "What is the one thing we should improve first?",
				Transitions: []compiler.SourceTransition{
					{Destination: "closing"},
				},
			},
			{
				Label: "closing",
				Type:  "message",
				Text:  "That's everything. Thank you for your time.",
			},
		},
	}

	qn, _, err := questionnaireRepo.Create(ctx, src)
	if err != nil {
		log.Fatalf("Failed to create questionnaire: %v", err)
	}

	now := time.Now()
	campaign, err := campaignRepo.Create(ctx, "Launch week feedback", qn.ID, now, now.Add(30*24*time.Hour))
	if err != nil {
		log.Fatalf("Failed to create campaign: %v", err)
	}

	fmt.Printf("Seeded questionnaire %q (%s) and campaign %q (%s)\n", qn.Name, qn.ID, campaign.Name, campaign.ID)
}
