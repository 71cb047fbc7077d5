package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/metaspex/interviews/internal/cache"
	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/model"
)

// QuestionnaireRepository persists Questionnaires and their
// QuestionnaireLocalizations, recompiling the model graph from stored
// source on every read. Reads consult Redis first, sparing a Mongo round
// trip for the questionnaire (and per-language localization) a live
// campaign is driving interviews against.
type QuestionnaireRepository struct {
	store     *Store
	compiler  *compiler.Compiler
	templates *TemplateRepository
	cache     cache.QuestionnaireCache
	locCache  cache.QuestionnaireLocalizationCache
}

func NewQuestionnaireRepository(store *Store, c *compiler.Compiler, templates *TemplateRepository, qc cache.QuestionnaireCache, qlc cache.QuestionnaireLocalizationCache) *QuestionnaireRepository {
	return &QuestionnaireRepository{store: store, compiler: c, templates: templates, cache: qc, locCache: qlc}
}

// compilerFor returns a Compiler whose TemplateLibrary is bound to ctx,
// since the shared *compiler.Compiler's own Templates field is set once
// at process start against no particular request.
func (r *QuestionnaireRepository) compilerFor(ctx context.Context) *compiler.Compiler {
	return compiler.New(r.compiler.Expr, r.templates.Library(ctx))
}

// Create compiles src into a Questionnaire plus its first
// QuestionnaireLocalization and persists both.
func (r *QuestionnaireRepository) Create(ctx context.Context, src *compiler.SourceQuestionnaire) (*model.Questionnaire, *model.QuestionnaireLocalization, error) {
	qn, ql, err := r.compilerFor(ctx).Compile(src)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	qdoc := questionnaireDoc{ID: qn.ID, Name: qn.Name, Source: *src, ChangeCount: qn.ChangeCount, Locked: false, CreatedAt: now, UpdatedAt: now}
	if _, err := r.store.Questionnaires.InsertOne(ctx, qdoc); err != nil {
		return nil, nil, err
	}
	ldoc := questionnaireLocalizationDoc{ID: ql.ID, QuestionnaireID: qn.ID, Language: ql.Language, First: true, LastChecked: ql.LastChecked, CreatedAt: now}
	if _, err := r.store.QuestionnaireLocalizations.InsertOne(ctx, ldoc); err != nil {
		return nil, nil, err
	}
	r.cacheSet(ctx, &qdoc)
	return qn, ql, nil
}

// Load recompiles and returns the Questionnaire with the given id,
// consulting the cache before Mongo.
func (r *QuestionnaireRepository) Load(ctx context.Context, id string) (*model.Questionnaire, error) {
	if rec, err := r.cache.Get(ctx, id); err == nil && rec != nil {
		qn, _, err := r.compilerFor(ctx).Compile(&rec.Source)
		if err != nil {
			return nil, err
		}
		qn.ID, qn.ChangeCount, qn.Locked = rec.ID, rec.ChangeCount, rec.Locked
		return qn, nil
	}

	var doc questionnaireDoc
	if err := r.store.Questionnaires.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrQuestionnaireDoesNotExist
		}
		return nil, err
	}
	qn, _, err := r.compilerFor(ctx).Compile(&doc.Source)
	if err != nil {
		return nil, err
	}
	qn.ID = doc.ID
	qn.ChangeCount = doc.ChangeCount
	qn.Locked = doc.Locked
	r.cacheSet(ctx, &doc)
	return qn, nil
}

// Lock marks qn (and its persisted record) locked, done the moment a
// Campaign is created against it; a locked Questionnaire can no longer
// be recompiled from a mutated source through this repository.
func (r *QuestionnaireRepository) Lock(ctx context.Context, id string) error {
	_, err := r.store.Questionnaires.UpdateOne(ctx, byID(id), map[string]any{"$set": map[string]any{"locked": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, id)
}

func (r *QuestionnaireRepository) cacheSet(ctx context.Context, doc *questionnaireDoc) {
	_ = r.cache.Set(ctx, &cache.QuestionnaireRecord{ID: doc.ID, Name: doc.Name, Source: doc.Source, ChangeCount: doc.ChangeCount, Locked: doc.Locked})
}

// CreateLocalization compiles and persists an additional-language
// QuestionnaireLocalization against the already-loaded qn, then runs
// the completeness check before returning.
func (r *QuestionnaireRepository) CreateLocalization(ctx context.Context, qn *model.Questionnaire, src *compiler.SourceQuestionnaireLocalization) (*model.QuestionnaireLocalization, error) {
	c := r.compilerFor(ctx)
	ql, err := c.CompileLocalization(qn, src)
	if err != nil {
		return nil, err
	}
	if err := c.ForceCheck(qn, ql); err != nil {
		return nil, err
	}
	ql.LastChecked = qn.ChangeCount

	doc := questionnaireLocalizationDoc{
		ID:              ql.ID,
		QuestionnaireID: qn.ID,
		Language:        ql.Language,
		First:           false,
		Source:          *src,
		LastChecked:     ql.LastChecked,
		CreatedAt:       time.Now(),
	}
	if _, err := r.store.QuestionnaireLocalizations.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	_ = r.locCache.Set(ctx, &cache.QuestionnaireLocalizationRecord{ID: doc.ID, QuestionnaireID: doc.QuestionnaireID, Language: doc.Language, First: doc.First, Source: doc.Source, LastChecked: doc.LastChecked})
	return ql, nil
}

// LoadLocalization recompiles qn's QuestionnaireLocalization for
// language, re-running the lazy completeness check and persisting
// LastChecked if it moved.
func (r *QuestionnaireRepository) LoadLocalization(ctx context.Context, qn *model.Questionnaire, language string) (*model.QuestionnaireLocalization, error) {
	var doc questionnaireLocalizationDoc
	var err error
	if rec, cerr := r.locCache.Get(ctx, qn.ID, language); cerr == nil && rec != nil {
		doc = questionnaireLocalizationDoc{ID: rec.ID, QuestionnaireID: rec.QuestionnaireID, Language: rec.Language, First: rec.First, Source: rec.Source, LastChecked: rec.LastChecked}
	} else {
		err = r.store.QuestionnaireLocalizations.FindOne(ctx, map[string]any{"questionnaire_id": qn.ID, "language": language}).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return nil, model.ErrQuestionnaireLocalizationDoesNotExist
		}
		if err != nil {
			return nil, err
		}
	}

	c := r.compilerFor(ctx)
	var ql *model.QuestionnaireLocalization
	if doc.First {
		var qdoc questionnaireDoc
		if err := r.store.Questionnaires.FindOne(ctx, byID(qn.ID)).Decode(&qdoc); err != nil {
			return nil, err
		}
		// The first localization's text lives inside the Questionnaire's
		// own source (it was built in step with Pass B, not uploaded
		// separately). Rebuild it as a SourceQuestionnaireLocalization
		// against qn itself, so its QuestionLocalizations attach to qn's
		// own Question pointers rather than a second, incompatible
		// recompile's.
		ql, err = c.CompileLocalization(qn, firstLocalizationSource(&qdoc.Source))
		if err != nil {
			return nil, err
		}
	} else {
		ql, err = c.CompileLocalization(qn, &doc.Source)
		if err != nil {
			return nil, err
		}
	}
	ql.ID = doc.ID
	ql.LastChecked = doc.LastChecked

	if err := c.Check(qn, ql); err != nil {
		return nil, err
	}
	if ql.LastChecked != doc.LastChecked {
		doc.LastChecked = ql.LastChecked
		_, _ = r.store.QuestionnaireLocalizations.UpdateOne(ctx, byID(doc.ID), map[string]any{"$set": map[string]any{"last_checked": ql.LastChecked}})
	}
	_ = r.locCache.Set(ctx, &cache.QuestionnaireLocalizationRecord{ID: doc.ID, QuestionnaireID: qn.ID, Language: language, First: doc.First, Source: doc.Source, LastChecked: doc.LastChecked})
	return ql, nil
}

// firstLocalizationSource recovers the per-question text of a
// Questionnaire's first localization from its own structural source,
// in the SourceQuestionnaireLocalization shape CompileLocalization
// expects.
func firstLocalizationSource(src *compiler.SourceQuestionnaire) *compiler.SourceQuestionnaireLocalization {
	out := &compiler.SourceQuestionnaireLocalization{Language: src.Language, Title: src.Title, Logo: src.Logo, Name: src.Name}
	for _, sq := range src.Questions {
		out.Questions = append(out.Questions, compiler.SourceQuestionLocalization{
			Label:        sq.Label,
			Text:         sq.Text,
			CommentLabel: sq.CommentLabel,
			Options:      sq.Options,
		})
	}
	return out
}
