// Package localize resolves the localized text and options of a
// question and renders parametric text, consuming only the results of
// the compiler (internal/compiler) and the expression host
// (internal/expr).
package localize

import "github.com/metaspex/interviews/internal/model"

// TemplateLookup is the narrow slice of the template-question store the
// renderer needs: resolving a from_template question's localization.
type TemplateLookup interface {
	TemplateQuestionLocalization(templateID, language string) (*model.TemplateQuestionLocalization, bool)
}

// Resolve implements the localization-resolution order: questionnaire
// localization first; if absent and the question is
// from_template, the template library for the given language; else
// fatal.
func Resolve(q *model.Question, ql *model.QuestionnaireLocalization, templates TemplateLookup, language string) (text, commentLabel string, options []*model.OptionLocalization, err error) {
	if q.Body.Kind() == model.KindFromTemplate {
		ft := q.Body.(model.FromTemplateBody)
		loc, ok := templates.TemplateQuestionLocalization(ft.Template.ID, language)
		if !ok {
			return "", "", nil, model.ErrQuestionLocalizationForTemplateDoesNotExist(q.Label)
		}
		return loc.Text, loc.CommentLabel, loc.OptionLocalizations, nil
	}

	loc := ql.ByQuestion(q)
	if loc == nil {
		return "", "", nil, model.ErrQuestionLocalizationDoesNotExist(q.Label)
	}
	return loc.Text, loc.CommentLabel, loc.OptionLocalizations, nil
}

// questionOptions returns the structural (non-localized) options behind
// q's body, or nil for bodies that have none.
func questionOptions(q *model.Question) []*model.Option {
	switch b := q.Body.(type) {
	case model.SelectBody:
		return b.Options
	case model.MultipleChoiceBody:
		return b.Options
	case model.FromTemplateBody:
		switch tb := b.Template.Body.(type) {
		case model.SelectBody:
			return tb.Options
		case model.MultipleChoiceBody:
			return tb.Options
		}
	}
	return nil
}
