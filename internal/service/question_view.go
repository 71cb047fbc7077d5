package service

import (
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
)

// OptionView is the rendered form of one selectable option.
type OptionView struct {
	Index        int    `json:"index"`
	Label        string `json:"label"`
	HasComment   bool   `json:"hasComment"`
	CommentLabel string `json:"commentLabel,omitempty"`
}

// QuestionView is what an interview client receives in place of a
// *model.Question: every field already localized and rendered against
// the interview's current loop state.
type QuestionView struct {
	Label              string       `json:"label"`
	Kind               string       `json:"kind"`
	Text               string       `json:"text"`
	CommentLabel       string       `json:"commentLabel,omitempty"`
	Options            []OptionView `json:"options,omitempty"`
	MultipleChoiceMode string       `json:"multipleChoiceMode,omitempty"`
	Limit              int          `json:"limit,omitempty"`
}

// BuildQuestionView renders q against stack for the interview's language,
// ready to serialize back to an interview client.
func BuildQuestionView(q *model.Question, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host, stack localize.StackLookup) (*QuestionView, error) {
	text, commentLabel, optionLocs, err := localize.Resolve(q, ql, templates, language)
	if err != nil {
		return nil, err
	}
	renderer := &localize.Renderer{Host: host, Templates: templates}
	rendered, err := renderer.Text(text, q, ql, language, stack)
	if err != nil {
		return nil, err
	}

	view := &QuestionView{Label: q.Label, Kind: string(q.Body.Kind()), Text: rendered, CommentLabel: commentLabel}

	opts := structuralOptions(q)
	for i, o := range opts {
		ov := OptionView{Index: i, HasComment: o.HasComment}
		if i < len(optionLocs) {
			ov.Label = optionLocs[i].Label
			ov.CommentLabel = optionLocs[i].CommentLabel
		}
		view.Options = append(view.Options, ov)
	}

	if mc, ok := underlyingBody(q).(model.MultipleChoiceBody); ok {
		view.MultipleChoiceMode = string(mc.Mode)
		view.Limit = mc.Limit
	}
	return view, nil
}

// underlyingBody resolves a from_template question to the body kind it
// inherits its structure from.
func underlyingBody(q *model.Question) model.QuestionBody {
	if ft, ok := q.Body.(model.FromTemplateBody); ok {
		return ft.Template.Body
	}
	return q.Body
}

func structuralOptions(q *model.Question) []*model.Option {
	switch b := underlyingBody(q).(type) {
	case model.SelectBody:
		return b.Options
	case model.MultipleChoiceBody:
		return b.Options
	default:
		return nil
	}
}
