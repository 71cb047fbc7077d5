package localize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/model"
)

// fakeStack is a minimal StackLookup, standing in for internal/interview's
// Stack without importing it (that package already imports this one).
type fakeStack struct {
	answers map[*model.Question]*model.Answer
	loopVar map[string]any
}

func newFakeStack() *fakeStack {
	return &fakeStack{answers: make(map[*model.Question]*model.Answer), loopVar: make(map[string]any)}
}

func (f *fakeStack) FindAnswer(q *model.Question) *model.Answer { return f.answers[q] }

func (f *fakeStack) LoopVariable(name string) (any, bool) {
	v, ok := f.loopVar[name]
	return v, ok
}

type fakeTemplates struct {
	locs map[string]*model.TemplateQuestionLocalization
}

func (f *fakeTemplates) TemplateQuestionLocalization(templateID, language string) (*model.TemplateQuestionLocalization, bool) {
	loc, ok := f.locs[templateID+"/"+language]
	return loc, ok
}

func compile(t *testing.T, src *compiler.SourceQuestionnaire, host expr.Host) (*model.Questionnaire, *model.QuestionnaireLocalization) {
	t.Helper()
	qn, ql, err := compiler.New(host, nil).Compile(src)
	require.NoError(t, err)
	return qn, ql
}

func TestResolve_ReturnsQuestionnaireLocalization(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{Label: "q1", Type: "message", Text: "Hello."},
		},
	}, host)

	q1 := qn.QuestionByLabel("q1")
	text, commentLabel, opts, err := Resolve(q1, ql, nil, "en")
	require.NoError(t, err)
	assert.Equal(t, "Hello.", text)
	assert.Empty(t, commentLabel)
	assert.Empty(t, opts)
}

func TestResolve_MissingLocalizationIsFatal(t *testing.T) {
	host := expr.NewGojaHost()
	qn, _ := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{Label: "q1", Type: "message", Text: "Hello."},
		},
	}, host)

	q1 := qn.QuestionByLabel("q1")
	empty := &model.QuestionnaireLocalization{}
	_, _, _, err := Resolve(q1, empty, nil, "fr")
	assert.Error(t, err)
}

func TestResolve_FromTemplateFallsBackToTemplateLibrary(t *testing.T) {
	tq := &model.TemplateQuestion{ID: "tq1", Label: "color", Body: model.SelectBody{Options: []*model.Option{{ID: "o1"}, {ID: "o2"}}}}
	loc := &model.TemplateQuestionLocalization{
		TemplateQuestionID: tq.ID,
		Text:               "Pick a color.",
		OptionLocalizations: []*model.OptionLocalization{
			{OptionID: "o1", Label: "Red"},
			{OptionID: "o2", Label: "Blue"},
		},
	}
	templates := &fakeTemplates{locs: map[string]*model.TemplateQuestionLocalization{"tq1/en": loc}}

	// Resolve only needs a Question carrying a FromTemplateBody; the
	// compiler's own from_template wiring is exercised in its own tests.
	q1 := &model.Question{Label: "q1", Body: model.FromTemplateBody{Template: tq}}

	text, _, opts, err := Resolve(q1, &model.QuestionnaireLocalization{}, templates, "en")
	require.NoError(t, err)
	assert.Equal(t, "Pick a color.", text)
	require.Len(t, opts, 2)
	assert.Equal(t, "Red", opts[0].Label)
}

func TestAnswerData_InputCarriesTextAndComment(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{Label: "q1", Type: "input", Text: "Say something."},
		},
	}, host)
	q1 := qn.QuestionByLabel("q1")
	ans := &model.Answer{Question: q1, Body: model.InputAnswerBody{Text: "hi", Comment: "note"}}

	data, err := AnswerData(ans, ql, nil, "en")
	require.NoError(t, err)
	m := data.(map[string]any)
	assert.Equal(t, "hi", m["text"])
	assert.Equal(t, "note", m["comment"])
}

func TestAnswerData_SelectCarriesChoiceAndOptions(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{
				Label: "q1", Type: "select", Text: "Pick one.",
				Options: []compiler.SourceOption{{Label: "A"}, {Label: "B"}},
			},
		},
	}, host)
	q1 := qn.QuestionByLabel("q1")
	ans := &model.Answer{Question: q1, Body: model.SelectAnswerBody{Choice: &model.Choice{Index: 1}}}

	data, err := AnswerData(ans, ql, nil, "en")
	require.NoError(t, err)
	m := data.(map[string]any)
	choice := m["choice"].(map[string]any)
	assert.Equal(t, 1, choice["index"])
	opts := m["options"].([]any)
	require.Len(t, opts, 2)
	assert.Equal(t, "B", opts[1].(map[string]any)["label"])
}

func TestRenderer_Text_SubstitutesFunctionResult(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{Label: "name", Type: "input", Text: "What is your name?"},
			{
				Label: "greeting", Type: "message", Text: "Hello, @{0}!",
				Functions: []compiler.SourceFunction{
					{Code: "firstToLower(name.text)", Parameters: []string{"name"}},
				},
			},
		},
	}, host)
	name := qn.QuestionByLabel("name")
	greeting := qn.QuestionByLabel("greeting")

	stack := newFakeStack()
	stack.answers[name] = &model.Answer{Question: name, Body: model.InputAnswerBody{Text: "Dana"}}

	r := &Renderer{Host: host}
	text := ql.ByQuestion(greeting).Text
	out, err := r.Text(text, greeting, ql, "en", stack)
	require.NoError(t, err)
	assert.Equal(t, "Hello, dana!", out)
}

func TestRenderer_Text_SubstitutesLoopVariable(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{Label: "items", Type: "input", Text: "List them."},
			{Label: "loop", Type: "begin_loop", Question: "items", Variable: "item", Operand: "R=items.text.split(',')"},
			{Label: "detail", Type: "message", Text: "Tell me about @{item}."},
			{Label: "endloop", Type: "end_loop"},
		},
	}, host)
	detail := qn.QuestionByLabel("detail")

	stack := newFakeStack()
	stack.loopVar["item"] = "banana"

	r := &Renderer{Host: host}
	text := ql.ByQuestion(detail).Text
	out, err := r.Text(text, detail, ql, "en", stack)
	require.NoError(t, err)
	assert.Equal(t, "Tell me about banana.", out)
}

func TestRenderer_Text_UnknownLoopVariableIsAnError(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{Label: "q1", Type: "message", Text: "Tell me about @{ghost}."},
		},
	}, host)
	q1 := qn.QuestionByLabel("q1")

	stack := newFakeStack()
	r := &Renderer{Host: host}
	text := ql.ByQuestion(q1).Text
	_, err := r.Text(text, q1, ql, "en", stack)
	assert.Error(t, err)
}

func TestRenderer_Text_MemoizesFunctionCallPerIndex(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compile(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{
				Label: "counter", Type: "message", Text: "@{0} and @{0} again.",
				Functions: []compiler.SourceFunction{
					// Increments counter each time it actually runs, so a second,
					// unmemoized evaluation would produce a different value.
					{Code: "counter = counter + 1"},
				},
			},
		},
	}, host)
	counter := qn.QuestionByLabel("counter")
	host.Inject("counter", float64(0))

	stack := newFakeStack()
	r := &Renderer{Host: host}
	text := ql.ByQuestion(counter).Text
	out, err := r.Text(text, counter, ql, "en", stack)
	require.NoError(t, err)
	assert.Equal(t, "1 and 1 again.", out)
}
