package interview

import "github.com/metaspex/interviews/internal/model"

// ValidateAnswerBody checks a submitted AnswerBody against the question
// it answers: body-kind agreement, comment presence tied to the chosen
// option's (or the question's) HasComment flag, and choice indexes in
// range. It does not evaluate any expression; that happens once the
// answer is accepted and the graph is advanced.
func ValidateAnswerBody(q *model.Question, body model.AnswerBody) error {
	body, optionsFor, hasComment, optional, mode, limit, err := resolveBody(q, body)
	if err != nil {
		return err
	}

	switch b := body.(type) {
	case model.MessageAnswerBody:
		return nil

	case model.InputAnswerBody:
		if !hasComment && b.Comment != "" {
			return model.ErrQuestionMustNotHaveAComment(q.Label)
		}
		if !optional && b.Text == "" {
			return model.ErrAnswerIsIncorrect
		}
		return nil

	case model.SelectAnswerBody:
		if !hasComment && b.Comment != "" {
			return model.ErrQuestionMustNotHaveAComment(q.Label)
		}
		opts := optionsFor()
		if b.Choice == nil {
			return model.ErrSelectionIsInvalid
		}
		if b.Choice.Index < 0 || b.Choice.Index >= len(opts) {
			return model.ErrSelectionIsInvalid
		}
		return validateChoiceComment(q, opts[b.Choice.Index], b.Choice)

	case model.MultipleChoiceAnswerBody:
		if !hasComment && b.Comment != "" {
			return model.ErrQuestionMustNotHaveAComment(q.Label)
		}
		opts := optionsFor()
		for _, c := range b.Choices {
			if c.Index < 0 || c.Index >= len(opts) {
				return model.ErrSelectionIsInvalid
			}
			if err := validateChoiceComment(q, opts[c.Index], c); err != nil {
				return err
			}
		}
		if err := validateChoiceCount(mode, limit, len(b.Choices)); err != nil {
			return err
		}
		return nil

	default:
		return model.ErrInternal
	}
}

// validateChoiceCount enforces a MultipleChoice question's Mode/Limit
// against the number of submitted choices, mirroring the at-most (count
// over limit) and exactly (count not equal to limit) rules shared by
// both the selection and ranking variants.
func validateChoiceCount(mode model.MultipleChoiceMode, limit, count int) error {
	switch mode {
	case model.SelectAtMost, model.RankAtMost:
		if limit > 0 && count > limit {
			return model.ErrAnswerIsIncorrect
		}
	case model.SelectExactly, model.RankExactly:
		if count != limit {
			return model.ErrAnswerIsIncorrect
		}
	}
	return nil
}

func validateChoiceComment(q *model.Question, o *model.Option, c *model.Choice) error {
	if !o.HasComment && c.Comment != "" {
		return model.ErrQuestionMustNotHaveAComment(q.Label)
	}
	return nil
}

// resolveBody unwraps a from_template question to its underlying body
// kind and returns the option list, has_comment flag, InputBody.Optional
// flag, and MultipleChoiceBody mode/limit the concrete AnswerBody should
// be checked against. mode and limit are zero-valued for kinds other
// than MultipleChoice.
func resolveBody(q *model.Question, body model.AnswerBody) (model.AnswerBody, func() []*model.Option, bool, bool, model.MultipleChoiceMode, int, error) {
	qbody := q.Body
	if ft, ok := qbody.(model.FromTemplateBody); ok {
		qbody = ft.Template.Body
	}

	switch tb := qbody.(type) {
	case model.MessageBody:
		return body, func() []*model.Option { return nil }, false, false, "", 0, nil
	case model.InputBody:
		return body, func() []*model.Option { return nil }, tb.HasComment, tb.Optional, "", 0, nil
	case model.SelectBody:
		return body, func() []*model.Option { return tb.Options }, tb.HasComment, false, "", 0, nil
	case model.MultipleChoiceBody:
		return body, func() []*model.Option { return tb.Options }, tb.HasComment, false, tb.Mode, tb.Limit, nil
	default:
		return nil, nil, false, false, "", 0, model.ErrInternal
	}
}
