package compiler

import "github.com/metaspex/interviews/internal/model"

// CompileLocalization validates and builds an additional
// QuestionnaireLocalization for an already-compiled Questionnaire. It
// does not run the completeness check; callers invoke Check afterward
// (start-of-interview and upload both do, via the lazy re-check below).
func (c *Compiler) CompileLocalization(qn *model.Questionnaire, src *SourceQuestionnaireLocalization) (*model.QuestionnaireLocalization, error) {
	ql := &model.QuestionnaireLocalization{
		ID:              idFunc(),
		QuestionnaireID: qn.ID,
		Questionnaire:   qn,
		Language:        src.Language,
		Title:           src.Title,
		Logo:            src.Logo,
		Name:            src.Name,
	}

	seen := make(map[string]bool, len(src.Questions))
	for i := range src.Questions {
		sq := &src.Questions[i]
		q := qn.QuestionByLabel(sq.Label)
		if q == nil {
			return nil, model.ErrQuestionLabelDoesNotExist(sq.Label)
		}
		if q.Body.Kind() == model.KindFromTemplate || q.IsLoop() {
			continue
		}
		if seen[sq.Label] {
			return nil, model.ErrQuestionLocalizationIsDuplicate(sq.Label)
		}
		seen[sq.Label] = true

		loc, err := c.compileQuestionLocalization(q, sq)
		if err != nil {
			return nil, err
		}
		ql.QuestionLocalizations = append(ql.QuestionLocalizations, loc)
	}

	ql.LastChecked = -1 // force a real completeness check on first Check call.
	return ql, nil
}

func (c *Compiler) compileQuestionLocalization(q *model.Question, sq *SourceQuestionLocalization) (*model.QuestionLocalization, error) {
	if sq.Text == "" {
		return nil, model.ErrQuestionLocalizationTextIsMissing(q.Label)
	}

	var opts []*model.Option
	var hasComment bool
	switch b := q.Body.(type) {
	case model.SelectBody:
		opts, hasComment = b.Options, b.HasComment
	case model.MultipleChoiceBody:
		opts, hasComment = b.Options, b.HasComment
	case model.InputBody:
		hasComment = b.HasComment
	}

	if hasComment && sq.CommentLabel == "" {
		return nil, model.ErrQuestionLocalizationCommentIsMissing(q.Label)
	}
	if !hasComment && sq.CommentLabel != "" {
		return nil, model.ErrQuestionLocalizationCommentIsPresent(q.Label)
	}

	if len(opts) != 0 && len(sq.Options) != len(opts) {
		return nil, model.ErrQuestionLocalizationOptionsSizeIsIncorrect(q.Label)
	}

	optLocs := make([]*model.OptionLocalization, 0, len(opts))
	seenLabels := make(map[string]bool, len(opts))
	for i, o := range opts {
		so := sq.Options[i]
		if so.Label == "" {
			return nil, model.ErrOptionLocalizationLabelIsEmpty(q.Label)
		}
		if o.HasComment && so.CommentLabel == "" {
			return nil, model.ErrOptionLocalizationCommentDoesNotExist(q.Label)
		}
		if !o.HasComment && so.CommentLabel != "" {
			return nil, model.ErrOptionLocalizationCommentIsPresent(q.Label)
		}
		if seenLabels[so.Label] {
			return nil, model.ErrQuestionLocalizationOptionDuplicate(q.Label)
		}
		seenLabels[so.Label] = true
		optLocs = append(optLocs, &model.OptionLocalization{OptionID: o.ID, Label: so.Label, CommentLabel: so.CommentLabel})
	}

	return &model.QuestionLocalization{
		ID:                  idFunc(),
		QuestionID:           q.ID,
		Question:             q,
		Text:                 sq.Text,
		OptionLocalizations:  optLocs,
		CommentLabel:         sq.CommentLabel,
	}, nil
}

// Check runs the localization completeness check: every non-from_template,
// non-loop question must have a QuestionLocalization here, and every
// from_template question must have a matching TemplateQuestionLocalization
// in the library for ql's language. It is a no-op when the questionnaire's
// change counter has not moved since the last successful check.
func (c *Compiler) Check(qn *model.Questionnaire, ql *model.QuestionnaireLocalization) error {
	if ql.LastChecked == qn.ChangeCount {
		return nil
	}
	if err := c.ForceCheck(qn, ql); err != nil {
		return err
	}
	ql.LastChecked = qn.ChangeCount
	return nil
}

// ForceCheck runs the completeness check unconditionally, ignoring the
// change-counter shortcut. Exposed separately so callers that just
// mutated the questionnaire (and are about to bump ChangeCount anyway)
// can validate before committing.
func (c *Compiler) ForceCheck(qn *model.Questionnaire, ql *model.QuestionnaireLocalization) error {
	for _, q := range qn.Questions {
		if q.IsLoop() {
			continue
		}
		if q.Body.Kind() == model.KindFromTemplate {
			ft := q.Body.(model.FromTemplateBody)
			if _, ok := c.Templates.TemplateQuestionLocalization(ft.Template.ID, ql.Language); !ok {
				return model.ErrQuestionLocalizationForTemplateDoesNotExist(q.Label)
			}
			continue
		}
		if ql.ByQuestion(q) == nil {
			return model.ErrQuestionLocalizationDoesNotExist(q.Label)
		}
	}
	return nil
}
