// Package compiler validates and links a SourceQuestionnaire (and its
// accompanying first localization, template questions and further
// localizations) into the internal, checked model graph. It is the only
// place new model.Questionnaire,
// model.QuestionnaireLocalization and model.TemplateQuestion* values are
// constructed; the interview interpreter only ever reads what the
// compiler produced.
package compiler

// SourceOption is the wire shape of one Select/MultipleChoice option,
// combining its structural flag with its first-language label.
type SourceOption struct {
	Label        string `json:"label"`
	HasComment   bool   `json:"has_comment,omitempty"`
	CommentLabel string `json:"comment_label,omitempty"`
}

// SourceFunction is the wire shape of a code snippet plus its ordered
// parameter-question labels, shared by transition conditions and
// text-functions.
type SourceFunction struct {
	Code       string   `json:"code"`
	Parameters []string `json:"parameters,omitempty"`
}

// SourceTransition is one outgoing edge as uploaded. Condition and Code
// are mutually exclusive; both empty/nil makes it a catch-all.
type SourceTransition struct {
	Condition   *SourceFunction `json:"condition,omitempty"`
	Code        *SourceFunction `json:"code,omitempty"`
	Destination string          `json:"destination"`
}

// SourceQuestion is the wire shape of one question, a flat struct
// standing in for the deep variant hierarchy of the original ontology.
// Only the fields relevant to Type are expected to be populated; the
// compiler rejects irrelevant fields being set on from_template,
// begin_loop and end_loop questions.
type SourceQuestion struct {
	Label string `json:"label"`
	Style string `json:"style,omitempty"`
	Type  string `json:"type"`

	Text         string         `json:"text,omitempty"`
	Optional     bool           `json:"optional,omitempty"`
	HasComment   bool           `json:"has_comment,omitempty"`
	CommentLabel string         `json:"comment_label,omitempty"`
	Options      []SourceOption `json:"options,omitempty"`
	Randomize    bool           `json:"randomize,omitempty"`
	Mode         string         `json:"mode,omitempty"`
	Limit        int            `json:"limit,omitempty"`

	Template string `json:"template,omitempty"` // from_template: template question label.

	Question string `json:"question,omitempty"` // begin_loop: operand-question label.
	Variable string `json:"variable,omitempty"`  // begin_loop: loop variable name.
	Operand  string `json:"operand,omitempty"`   // begin_loop: operand-expression code.

	Functions   []SourceFunction   `json:"functions,omitempty"`
	Transitions []SourceTransition `json:"transitions,omitempty"`
}

// SourceQuestionnaire is a full upload: structure plus the first
// language's text, compiled together in one pass.
type SourceQuestionnaire struct {
	Name     string           `json:"name"`
	Language string           `json:"language"`
	Title    string           `json:"title,omitempty"`
	Logo     string           `json:"logo,omitempty"`
	Questions []SourceQuestion `json:"questions"`
}

// SourceQuestionLocalization is one question's text for a
// QuestionnaireLocalization uploaded independently of the structural
// compile ("questionnaire-localization compile").
type SourceQuestionLocalization struct {
	Label        string         `json:"label"`
	Text         string         `json:"text,omitempty"`
	CommentLabel string         `json:"comment_label,omitempty"`
	Options      []SourceOption `json:"options,omitempty"`
}

// SourceQuestionnaireLocalization is a full additional-language upload.
type SourceQuestionnaireLocalization struct {
	Language  string                        `json:"language"`
	Title     string                        `json:"title,omitempty"`
	Logo      string                        `json:"logo,omitempty"`
	Name      string                        `json:"name,omitempty"`
	Questions []SourceQuestionLocalization `json:"questions"`
}

// SourceTemplateQuestion is the wire shape for creating/updating a
// TemplateQuestion: structure only, no language-specific text.
type SourceTemplateQuestion struct {
	CategoryID string         `json:"category_id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Optional   bool           `json:"optional,omitempty"`
	HasComment bool           `json:"has_comment,omitempty"`
	Options    []SourceOption `json:"options,omitempty"`
	Randomize  bool           `json:"randomize,omitempty"`
	Mode       string         `json:"mode,omitempty"`
	Limit      int            `json:"limit,omitempty"`
}

// SourceTemplateQuestionLocalization is the wire shape for one
// (template, language) rendering.
type SourceTemplateQuestionLocalization struct {
	Language     string         `json:"language"`
	Text         string         `json:"text,omitempty"`
	CommentLabel string         `json:"comment_label,omitempty"`
	Options      []SourceOption `json:"options,omitempty"`
}
