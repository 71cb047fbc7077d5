package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/model"
)

// TemplateRepository persists the template-question library: categories,
// template questions, and their per-language localizations.
type TemplateRepository struct {
	store *Store
	c     *compiler.Compiler
}

func NewTemplateRepository(store *Store, c *compiler.Compiler) *TemplateRepository {
	return &TemplateRepository{store: store, c: c}
}

func (r *TemplateRepository) CreateCategory(ctx context.Context, name string) (*model.TemplateQuestionCategory, error) {
	cat := &model.TemplateQuestionCategory{ID: uuid.NewString(), Name: name}
	_, err := r.store.TemplateCategories.InsertOne(ctx, templateQuestionCategoryDoc{ID: cat.ID, Name: cat.Name})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (r *TemplateRepository) Category(ctx context.Context, id string) (*model.TemplateQuestionCategory, error) {
	var doc templateQuestionCategoryDoc
	if err := r.store.TemplateCategories.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrTemplateQuestionCategoryDoesNotExist
		}
		return nil, err
	}
	return &model.TemplateQuestionCategory{ID: doc.ID, Name: doc.Name}, nil
}

// CreateQuestion compiles src against the already-loaded template
// library (so earlier templates can be referenced indirectly through
// the normal compiler path; in practice templates never reference one
// another, but the same Compiler is reused for uniformity) and persists
// both the compiled model and the original source for later rehydration.
func (r *TemplateRepository) CreateQuestion(ctx context.Context, categoryID string, src *compiler.SourceTemplateQuestion) (*model.TemplateQuestion, error) {
	if _, err := r.Category(ctx, categoryID); err != nil {
		return nil, err
	}
	if existing, _ := r.QuestionByLabel(ctx, src.Label); existing != nil {
		return nil, model.ErrTemplateQuestionAlreadyExists
	}
	tq, err := r.c.CompileTemplateQuestion(categoryID, src)
	if err != nil {
		return nil, err
	}
	doc := templateQuestionDoc{ID: tq.ID, CategoryID: categoryID, Source: *src, CreatedAt: time.Now()}
	if _, err := r.store.TemplateQuestions.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return tq, nil
}

func (r *TemplateRepository) QuestionByLabel(ctx context.Context, label string) (*model.TemplateQuestion, error) {
	var doc templateQuestionDoc
	if err := r.store.TemplateQuestions.FindOne(ctx, map[string]any{"source.label": label}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrTemplateQuestionDoesNotExistWithLabel(label)
		}
		return nil, err
	}
	return r.rehydrateQuestion(&doc)
}

func (r *TemplateRepository) Question(ctx context.Context, id string) (*model.TemplateQuestion, error) {
	var doc templateQuestionDoc
	if err := r.store.TemplateQuestions.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrTemplateQuestionDoesNotExist
		}
		return nil, err
	}
	return r.rehydrateQuestion(&doc)
}

func (r *TemplateRepository) ListByCategory(ctx context.Context, categoryID string) ([]*model.TemplateQuestion, error) {
	cur, err := r.store.TemplateQuestions.Find(ctx, map[string]any{"category_id": categoryID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.TemplateQuestion
	for cur.Next(ctx) {
		var doc templateQuestionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		tq, err := r.rehydrateQuestion(&doc)
		if err != nil {
			return nil, err
		}
		out = append(out, tq)
	}
	return out, cur.Err()
}

func (r *TemplateRepository) rehydrateQuestion(doc *templateQuestionDoc) (*model.TemplateQuestion, error) {
	tq, err := r.c.CompileTemplateQuestion(doc.CategoryID, &doc.Source)
	if err != nil {
		return nil, err
	}
	tq.ID = doc.ID
	return tq, nil
}

// CreateQuestionLocalization compiles and persists one
// (template, language) rendering. Deletion of an existing one is not
// supported; this repository offers no Delete for that reason.
func (r *TemplateRepository) CreateQuestionLocalization(ctx context.Context, tq *model.TemplateQuestion, src *compiler.SourceTemplateQuestionLocalization) (*model.TemplateQuestionLocalization, error) {
	if _, ok := r.queryLocalization(ctx, tq.ID, src.Language); ok {
		return nil, model.ErrTemplateQuestionLocalizationAlreadyExists
	}
	loc, err := r.c.CompileTemplateQuestionLocalization(tq, src)
	if err != nil {
		return nil, err
	}
	doc := templateQuestionLocalizationDoc{
		ID:                 loc.ID,
		TemplateQuestionID: tq.ID,
		Language:           loc.Language,
		Source:             *src,
		CreatedAt:          time.Now(),
	}
	if _, err := r.store.TemplateLocalizations.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *TemplateRepository) queryLocalization(ctx context.Context, templateID, language string) (*templateQuestionLocalizationDoc, bool) {
	var doc templateQuestionLocalizationDoc
	err := r.store.TemplateLocalizations.FindOne(ctx, map[string]any{
		"template_question_id": templateID,
		"language":              language,
	}).Decode(&doc)
	return &doc, err == nil
}

// TemplateQuestionLocalization looks up and recompiles one localization,
// satisfying both compiler.TemplateLibrary and localize.TemplateLookup.
func (r *TemplateRepository) TemplateQuestionLocalization(ctx context.Context, templateID, language string) (*model.TemplateQuestionLocalization, bool) {
	doc, ok := r.queryLocalization(ctx, templateID, language)
	if !ok {
		return nil, false
	}
	tqDoc := templateQuestionDoc{}
	if err := r.store.TemplateQuestions.FindOne(ctx, byID(templateID)).Decode(&tqDoc); err != nil {
		return nil, false
	}
	tq, err := r.rehydrateQuestion(&tqDoc)
	if err != nil {
		return nil, false
	}
	loc, err := r.c.CompileTemplateQuestionLocalization(tq, &doc.Source)
	if err != nil {
		return nil, false
	}
	loc.ID = doc.ID
	return loc, true
}

// Library adapts this repository to compiler.TemplateLibrary for a
// single compile call, binding the request-scoped context.
func (r *TemplateRepository) Library(ctx context.Context) compiler.TemplateLibrary {
	return &boundTemplateLibrary{repo: r, ctx: ctx}
}

// Lookup adapts this repository to localize.TemplateLookup for a single
// render, binding the request-scoped context.
func (r *TemplateRepository) Lookup(ctx context.Context) *boundTemplateLibrary {
	return &boundTemplateLibrary{repo: r, ctx: ctx}
}

type boundTemplateLibrary struct {
	repo *TemplateRepository
	ctx  context.Context
}

func (b *boundTemplateLibrary) TemplateQuestionByLabel(label string) (*model.TemplateQuestion, bool) {
	tq, err := b.repo.QuestionByLabel(b.ctx, label)
	if err != nil {
		return nil, false
	}
	return tq, true
}

func (b *boundTemplateLibrary) TemplateQuestionLocalization(templateID, language string) (*model.TemplateQuestionLocalization, bool) {
	return b.repo.TemplateQuestionLocalization(b.ctx, templateID, language)
}

func byID(id string) map[string]any { return map[string]any{"_id": id} }
