package model

// TemplateQuestionCategory groups TemplateQuestions for browsing/authoring
// purposes; it owns nothing structurally beyond the grouping.
type TemplateQuestionCategory struct {
	ID   string
	Name string
}

// TemplateQuestion is a reusable question body living outside any
// questionnaire, under a category. Body mirrors a Question's variant but
// is restricted to the renderable kinds (never FromTemplate, BeginLoop or
// EndLoop; a template cannot nest another template or a loop).
type TemplateQuestion struct {
	ID         string
	CategoryID string
	Label      string
	Body       QuestionBody
}

// TemplateQuestionLocalization is the per-(template, language) rendering.
// Uniqueness of (TemplateQuestionID, Language) is enforced by the
// compiler/store; deletion is forbidden once created, since a
// questionnaire localization may already depend on it passing its
// completeness check.
type TemplateQuestionLocalization struct {
	ID                 string
	TemplateQuestionID string
	Language           string
	Text               string
	OptionLocalizations []*OptionLocalization
	CommentLabel       string
}
