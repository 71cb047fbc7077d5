package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the collection handles every repository in this package
// reads and writes: a single database with one collection per document
// kind.
type Store struct {
	db *mongo.Database

	TemplateCategories   *mongo.Collection
	TemplateQuestions    *mongo.Collection
	TemplateLocalizations *mongo.Collection
	Questionnaires        *mongo.Collection
	QuestionnaireLocalizations *mongo.Collection
	Campaigns             *mongo.Collection
	Interviews            *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:                         db,
		TemplateCategories:         db.Collection("template_question_categories"),
		TemplateQuestions:          db.Collection("template_questions"),
		TemplateLocalizations:      db.Collection("template_question_localizations"),
		Questionnaires:             db.Collection("questionnaires"),
		QuestionnaireLocalizations: db.Collection("questionnaire_localizations"),
		Campaigns:                  db.Collection("campaigns"),
		Interviews:                 db.Collection("interviews"),
	}
}

// EnsureIndexes creates the secondary indexes the repositories query by:
// template questions by label, template-localizations by
// (template_id, language), questionnaire-localizations by
// (questionnaire_id, language), template questions by category,
// questionnaires by name, campaigns by name, interviews by campaign.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	type idx struct {
		coll *mongo.Collection
		keys any
		name string
	}
	specs := []idx{
		{s.TemplateQuestions, map[string]int{"source.label": 1}, "by_label"},
		{s.TemplateQuestions, map[string]int{"category_id": 1}, "by_category"},
		{s.TemplateLocalizations, map[string]int{"template_question_id": 1, "language": 1}, "by_template_language"},
		{s.QuestionnaireLocalizations, map[string]int{"questionnaire_id": 1, "language": 1}, "by_questionnaire_language"},
		{s.Questionnaires, map[string]int{"name": 1}, "by_name"},
		{s.Campaigns, map[string]int{"name": 1}, "by_name"},
		{s.Interviews, map[string]int{"campaign_id": 1}, "by_campaign"},
	}
	for _, sp := range specs {
		if err := createIndex(ctx, sp.coll, sp.keys, sp.name); err != nil {
			return err
		}
	}
	return nil
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys any, name string) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name),
	})
	return err
}
