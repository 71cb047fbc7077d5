package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/model"
)

func newTestCompiler() *Compiler {
	return New(expr.NewMockHost(), nil)
}

func TestCompile_LinearQuestionnaire(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name:     "feedback",
		Language: "en",
		Questions: []SourceQuestion{
			{
				Label: "welcome",
				Type:  "message",
				Text:  "Hi there.",
				Transitions: []SourceTransition{
					{Destination: "name"},
				},
			},
			{Label: "name", Type: "input", Text: "What is your name?"},
			{Label: "closing", Type: "message", Text: "Thanks."},
		},
	}

	qn, ql, err := c.Compile(src)
	require.NoError(t, err)
	require.NotNil(t, qn)
	require.NotNil(t, ql)

	assert.Equal(t, "feedback", qn.Name)
	require.Len(t, qn.Questions, 3)
	assert.Equal(t, "welcome", qn.Questions[0].Label)
	assert.Equal(t, "name", qn.Questions[1].Label)
	assert.Equal(t, "closing", qn.Questions[2].Label)

	// welcome has an explicit transition to name.
	require.Len(t, qn.Questions[0].Transitions, 1)
	assert.Same(t, qn.Questions[1], qn.Questions[0].Transitions[0].Destination)

	// name is not final-capable and carries no explicit transitions, so it
	// chains to the next question in source order.
	require.Len(t, qn.Questions[1].Transitions, 1)
	assert.Same(t, qn.Questions[2], qn.Questions[1].Transitions[0].Destination)

	// closing is final-capable and last, so it carries no transitions at all.
	assert.Empty(t, qn.Questions[2].Transitions)

	require.Len(t, ql.QuestionLocalizations, 3)
	assert.Equal(t, "Hi there.", ql.QuestionLocalizations[0].Text)
}

func TestCompile_EmptyNameRejected(t *testing.T) {
	c := newTestCompiler()
	_, _, err := c.Compile(&SourceQuestionnaire{Questions: []SourceQuestion{{Label: "a", Type: "message"}}})
	assert.Equal(t, model.ErrSourceQuestionnaireNameIsEmpty, err)
}

func TestCompile_NoQuestionsRejected(t *testing.T) {
	c := newTestCompiler()
	_, _, err := c.Compile(&SourceQuestionnaire{Name: "x"})
	assert.Equal(t, model.ErrSourceQuestionnaireHasNoQuestions, err)
}

func TestCompile_DuplicateLabelRejected(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{Label: "a", Type: "message"},
			{Label: "a", Type: "message"},
		},
	}
	_, _, err := c.Compile(src)
	require.Error(t, err)
	qerr, ok := err.(*model.QuestionError)
	require.True(t, ok)
	assert.Equal(t, "qlabdup", qerr.Code)
}

func TestCompile_InvalidLabelRejected(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name:      "x",
		Questions: []SourceQuestion{{Label: "1bad", Type: "message"}},
	}
	_, _, err := c.Compile(src)
	qerr, ok := err.(*model.QuestionError)
	require.True(t, ok)
	assert.Equal(t, "qlabinv", qerr.Code)
}

func TestCompile_TransitionToUnknownDestinationRejected(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{
				Label: "a", Type: "message",
				Transitions: []SourceTransition{{Destination: "nope"}},
			},
		},
	}
	_, _, err := c.Compile(src)
	terr, ok := err.(*model.TransitionError)
	require.True(t, ok)
	assert.Equal(t, "sqtnonex", terr.Code)
}

func TestCompile_TransitionToPreviousQuestionRejected(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{Label: "a", Type: "message", Transitions: []SourceTransition{{Destination: "b"}}},
			{Label: "b", Type: "message", Transitions: []SourceTransition{{Destination: "a"}}},
		},
	}
	_, _, err := c.Compile(src)
	terr, ok := err.(*model.TransitionError)
	require.True(t, ok)
	assert.Equal(t, "sqtprev", terr.Code)
}

func TestCompile_ConditionalBranchRequiresCatchAll(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{
				Label: "a", Type: "input",
				Transitions: []SourceTransition{
					{Condition: &SourceFunction{Code: "true"}, Destination: "b"},
				},
			},
			{Label: "b", Type: "message"},
		},
	}
	_, _, err := c.Compile(src)
	terr, ok := err.(*model.TransitionError)
	require.True(t, ok)
	assert.Equal(t, "sqtlackcall", terr.Code)
}

func TestCompile_SelectWithoutOptionsRejected(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name:      "x",
		Questions: []SourceQuestion{{Label: "a", Type: "select"}},
	}
	_, _, err := c.Compile(src)
	qerr, ok := err.(*model.QuestionError)
	require.True(t, ok)
	assert.Equal(t, "sqinvoptions", qerr.Code)
}

func TestCompile_BeginLoopWithoutMatchingEndLoopRejected(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{Label: "count", Type: "input"},
			{Label: "loop", Type: "begin_loop", Question: "count", Variable: "item", Operand: "R=[]"},
		},
	}
	_, _, err := c.Compile(src)
	qerr, ok := err.(*model.QuestionError)
	require.True(t, ok)
	assert.Equal(t, "qlnotcl", qerr.Code)
}

func TestCompile_BalancedLoopLinksBeginAndEnd(t *testing.T) {
	c := newTestCompiler()
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{Label: "count", Type: "input"},
			{Label: "loop", Type: "begin_loop", Question: "count", Variable: "item", Operand: "R=[1,2,3]"},
			{Label: "item_q", Type: "input"},
			{Label: "endloop", Type: "end_loop"},
			{Label: "closing", Type: "message"},
		},
	}
	qn, _, err := c.Compile(src)
	require.NoError(t, err)

	loop := qn.QuestionByLabel("loop")
	end := qn.QuestionByLabel("endloop")
	require.NotNil(t, loop.MatchingEndLoop)
	assert.Same(t, end, loop.MatchingEndLoop)
	assert.Same(t, loop, end.MatchingBeginLoop)
}

func TestCompile_FromTemplateRejectsOwnBody(t *testing.T) {
	lib := &fakeLibrary{
		questions: map[string]*model.TemplateQuestion{
			"age": {ID: "tq1", Label: "age", Body: model.SelectBody{Options: []*model.Option{{ID: "o1"}}}},
		},
	}
	c := New(expr.NewMockHost(), lib)
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{Label: "a", Type: "from_template", Template: "age", Text: "should not be here"},
		},
	}
	_, _, err := c.Compile(src)
	qerr, ok := err.(*model.QuestionError)
	require.True(t, ok)
	assert.Equal(t, "sqfthasbody", qerr.Code)
}

func TestCompile_FromTemplateResolvesAgainstLibrary(t *testing.T) {
	lib := &fakeLibrary{
		questions: map[string]*model.TemplateQuestion{
			"age": {ID: "tq1", Label: "age", Body: model.SelectBody{Options: []*model.Option{{ID: "o1"}}}},
		},
	}
	c := New(expr.NewMockHost(), lib)
	src := &SourceQuestionnaire{
		Name: "x",
		Questions: []SourceQuestion{
			{Label: "a", Type: "from_template", Template: "age"},
			{Label: "closing", Type: "message"},
		},
	}
	qn, _, err := c.Compile(src)
	require.NoError(t, err)
	body, ok := qn.Questions[0].Body.(model.FromTemplateBody)
	require.True(t, ok)
	assert.Same(t, lib.questions["age"], body.Template)
}

type fakeLibrary struct {
	questions map[string]*model.TemplateQuestion
}

func (f *fakeLibrary) TemplateQuestionByLabel(label string) (*model.TemplateQuestion, bool) {
	tq, ok := f.questions[label]
	return tq, ok
}

func (f *fakeLibrary) TemplateQuestionLocalization(templateID, language string) (*model.TemplateQuestionLocalization, bool) {
	return nil, false
}
