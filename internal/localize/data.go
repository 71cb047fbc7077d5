package localize

import "github.com/metaspex/interviews/internal/model"

// AnswerData builds the JSON-like, $type-stripped representation of an
// answer that gets injected as a Function parameter and as the loop
// operand's R binding. Option arrays carry {index, label} and choice
// arrays carry {index, comment?}, matching the helper-library contract.
func AnswerData(a *model.Answer, ql *model.QuestionnaireLocalization, templates TemplateLookup, language string) (any, error) {
	switch b := a.Body.(type) {
	case model.MessageAnswerBody:
		return map[string]any{}, nil

	case model.InputAnswerBody:
		return map[string]any{"text": b.Text, "comment": b.Comment}, nil

	case model.SelectAnswerBody:
		opts, err := optionsData(a.Question, ql, templates, language)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"choice":  choiceData(b.Choice),
			"comment": b.Comment,
			"options": opts,
		}, nil

	case model.MultipleChoiceAnswerBody:
		opts, err := optionsData(a.Question, ql, templates, language)
		if err != nil {
			return nil, err
		}
		choices := make([]any, 0, len(b.Choices))
		for _, c := range b.Choices {
			choices = append(choices, choiceData(c))
		}
		return map[string]any{
			"choices": choices,
			"comment": b.Comment,
			"options": opts,
		}, nil

	default:
		return nil, model.ErrInternal
	}
}

func choiceData(c *model.Choice) map[string]any {
	if c == nil {
		return nil
	}
	m := map[string]any{"index": c.Index}
	if c.Comment != "" {
		m["comment"] = c.Comment
	}
	return m
}

func optionsData(q *model.Question, ql *model.QuestionnaireLocalization, templates TemplateLookup, language string) ([]any, error) {
	opts := questionOptions(q)
	if len(opts) == 0 {
		return nil, nil
	}
	_, _, optLocs, err := Resolve(q, ql, templates, language)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(opts))
	for i := range opts {
		label := ""
		if i < len(optLocs) {
			label = optLocs[i].Label
		}
		out = append(out, map[string]any{"index": i, "label": label})
	}
	return out, nil
}
