package compiler

import "github.com/metaspex/interviews/internal/model"

// CompileTemplateQuestion validates and builds a TemplateQuestion body.
// Only the renderable kinds are legal; from_template, begin_loop and
// end_loop make no sense inside the template library itself.
func (c *Compiler) CompileTemplateQuestion(categoryID string, src *SourceTemplateQuestion) (*model.TemplateQuestion, error) {
	if src.Label == "" || !validLabel(src.Label) {
		return nil, model.ErrQuestionLabelIsInvalid(src.Label)
	}

	var body model.QuestionBody
	switch src.Type {
	case "message":
		body = model.MessageBody{}
	case "input":
		body = model.InputBody{Optional: src.Optional, HasComment: src.HasComment}
	case "select":
		opts, err := buildOptions(src.Options, src.Label)
		if err != nil {
			return nil, err
		}
		body = model.SelectBody{Options: opts, Randomize: src.Randomize, HasComment: src.HasComment}
	case "multiple_choice":
		mode, err := parseMode(src.Mode, src.Label)
		if err != nil {
			return nil, err
		}
		opts, err := buildOptions(src.Options, src.Label)
		if err != nil {
			return nil, err
		}
		body = model.MultipleChoiceBody{Mode: mode, Options: opts, Randomize: src.Randomize, HasComment: src.HasComment, Limit: src.Limit}
	default:
		return nil, model.ErrTemplateQuestionIsInvalid
	}

	return &model.TemplateQuestion{ID: idFunc(), CategoryID: categoryID, Label: src.Label, Body: body}, nil
}

// CompileTemplateQuestionLocalization validates one (template, language)
// rendering against the template's already-compiled body.
func (c *Compiler) CompileTemplateQuestionLocalization(tq *model.TemplateQuestion, src *SourceTemplateQuestionLocalization) (*model.TemplateQuestionLocalization, error) {
	if src.Language == "" {
		return nil, model.ErrTemplateQuestionLanguageIsInvalid
	}

	var opts []*model.Option
	switch b := tq.Body.(type) {
	case model.SelectBody:
		opts = b.Options
	case model.MultipleChoiceBody:
		opts = b.Options
	}
	if len(opts) != 0 && len(src.Options) != len(opts) {
		return nil, model.ErrTemplateQuestionLocalizationOptionsSizeIsIncorrect
	}

	optLocs := make([]*model.OptionLocalization, 0, len(opts))
	for i, o := range opts {
		if src.Options[i].Label == "" {
			return nil, model.ErrTemplateQuestionLocalizationContainsNullOption
		}
		optLocs = append(optLocs, &model.OptionLocalization{
			OptionID:     o.ID,
			Label:        src.Options[i].Label,
			CommentLabel: src.Options[i].CommentLabel,
		})
	}

	return &model.TemplateQuestionLocalization{
		ID:                  idFunc(),
		TemplateQuestionID:  tq.ID,
		Language:            src.Language,
		Text:                src.Text,
		OptionLocalizations: optLocs,
		CommentLabel:        src.CommentLabel,
	}, nil
}
