package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaspex/interviews/internal/compiler"
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
)

func compileFixture(t *testing.T, src *compiler.SourceQuestionnaire, host expr.Host) (*model.Questionnaire, *model.QuestionnaireLocalization) {
	t.Helper()
	c := compiler.New(host, nil)
	qn, ql, err := c.Compile(src)
	require.NoError(t, err)
	return qn, ql
}

func TestStart_PointsAtFirstQuestion(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := compileFixture(t, &compiler.SourceQuestionnaire{
		Name:     "x",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{Label: "welcome", Type: "message", Transitions: []compiler.SourceTransition{{Destination: "closing"}}},
			{Label: "closing", Type: "message"},
		},
	}, host)

	iv := &model.Interview{State: model.Initiated}
	err := Start(iv, qn, ql, StartMeta{Timestamp: 1000, IntervieweeID: "resp-1"})
	require.NoError(t, err)

	assert.Equal(t, model.Ongoing, iv.State)
	require.NotNil(t, iv.NextQuestion)
	assert.Equal(t, "welcome", iv.NextQuestion.Label)
	assert.Equal(t, ql.Language, iv.Language)
	assert.Equal(t, ql.ID, iv.QuestionnaireLocalizationID)
}

func TestStart_RejectsAlreadyStarted(t *testing.T) {
	iv := &model.Interview{State: model.Ongoing}
	err := Start(iv, &model.Questionnaire{Questions: []*model.Question{}}, &model.QuestionnaireLocalization{}, StartMeta{})
	assert.Equal(t, model.ErrInterviewIsAlreadyStarted, err)
}

func TestStart_RejectsAlreadyCompleted(t *testing.T) {
	iv := &model.Interview{State: model.Completed}
	err := Start(iv, &model.Questionnaire{Questions: []*model.Question{}}, &model.QuestionnaireLocalization{}, StartMeta{})
	assert.Equal(t, model.ErrInterviewIsAlreadyCompleted, err)
}

// branchFixture builds welcome -> rating -> (why_bad | closing), branching
// on whether the respondent picked the first ("bad") rating option.
func branchFixture(t *testing.T, host expr.Host) (*model.Questionnaire, *model.QuestionnaireLocalization) {
	return compileFixture(t, &compiler.SourceQuestionnaire{
		Name:     "feedback",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{
				Label: "welcome", Type: "message", Text: "Welcome.",
				Transitions: []compiler.SourceTransition{{Destination: "rating"}},
			},
			{
				Label: "rating", Type: "select", Text: "How was it?",
				Options: []compiler.SourceOption{{Label: "bad"}, {Label: "good"}},
				Transitions: []compiler.SourceTransition{
					{
						Condition:   &compiler.SourceFunction{Code: "rating.choice.index==0"},
						Destination: "why_bad",
					},
					{Destination: "closing"},
				},
			},
			{
				Label: "why_bad", Type: "input", Text: "Sorry to hear that. What went wrong?",
				Transitions: []compiler.SourceTransition{{Destination: "closing"}},
			},
			{Label: "closing", Type: "message", Text: "Thanks for your feedback."},
		},
	}, host)
}

func TestSubmit_LinearAdvancesToNextQuestion(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := branchFixture(t, host)

	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 1000}))
	require.Equal(t, "welcome", iv.NextQuestion.Label)

	next, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1500}, host, ql, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "rating", next.Label)
	assert.Equal(t, model.Ongoing, iv.State)
	require.Len(t, iv.History, 1)
	assert.Equal(t, int64(500), iv.History[0].(*model.AnswerEntry).Answer.Elapsed)
}

func TestSubmit_ConditionalBranchTakesMatchingDestination(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := branchFixture(t, host)

	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))

	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)

	next, err := Submit(iv, model.SelectAnswerBody{Choice: &model.Choice{Index: 0}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "why_bad", next.Label)
	assert.Equal(t, model.Ongoing, iv.State)
}

func TestSubmit_ConditionalBranchFallsThroughToCatchAll(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := branchFixture(t, host)

	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))

	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)

	next, err := Submit(iv, model.SelectAnswerBody{Choice: &model.Choice{Index: 1}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "closing", next.Label)
	assert.Equal(t, model.Completed, iv.State)
}

func TestSubmit_RejectsOutOfRangeChoice(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := branchFixture(t, host)

	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)

	_, err = Submit(iv, model.SelectAnswerBody{Choice: &model.Choice{Index: 5}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	assert.Equal(t, model.ErrSelectionIsInvalid, err)
}

func TestSubmit_RejectsWhenInterviewNotOngoing(t *testing.T) {
	host := expr.NewGojaHost()
	_, ql := branchFixture(t, host)
	iv := &model.Interview{State: model.Initiated}
	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{}, host, ql, nil)
	assert.Equal(t, model.ErrInterviewIsNotStarted, err)
}

// loopFixture builds welcome -> items -> loop(over items.text split on
// commas) -> item_detail -> endloop -> closing, exercising the implicit
// next-in-order chaining around a loop body.
func loopFixture(t *testing.T, host expr.Host) (*model.Questionnaire, *model.QuestionnaireLocalization) {
	return compileFixture(t, &compiler.SourceQuestionnaire{
		Name:     "roster",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{
				Label: "welcome", Type: "message", Text: "Let's list a few things.",
				Transitions: []compiler.SourceTransition{{Destination: "items"}},
			},
			{
				Label: "items", Type: "input", Text: "List them, separated by commas.",
				Transitions: []compiler.SourceTransition{{Destination: "loop"}},
			},
			{
				Label: "loop", Type: "begin_loop",
				Question: "items", Variable: "item", Operand: "R=items.text?items.text.split(','):null",
			},
			{Label: "item_detail", Type: "input", Text: "Tell me more about this one."},
			{Label: "endloop", Type: "end_loop"},
			{Label: "closing", Type: "message", Text: "All done."},
		},
	}, host)
}

func TestSubmit_LoopIteratesOverOperandArray(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := loopFixture(t, host)

	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	require.Equal(t, "welcome", iv.NextQuestion.Label)

	next, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)
	assert.Equal(t, "items", next.Label)

	next, err = Submit(iv, model.InputAnswerBody{Text: "apple,banana,cherry"}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "item_detail", next.Label)

	var beginLoops int
	for _, e := range iv.History {
		if e.Kind() == model.EntryBeginLoop {
			beginLoops++
		}
	}
	assert.Equal(t, 1, beginLoops)

	// Three passes through item_detail, one per listed item.
	for i := 0; i < 2; i++ {
		next, err = Submit(iv, model.InputAnswerBody{Text: "detail"}, AnswerMeta{Timestamp: int64(3 + i)}, host, ql, nil)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, "item_detail", next.Label)
		assert.Equal(t, model.Ongoing, iv.State)
	}

	next, err = Submit(iv, model.InputAnswerBody{Text: "detail"}, AnswerMeta{Timestamp: 10}, host, ql, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "closing", next.Label)
	assert.Equal(t, model.Completed, iv.State)

	var endLoops int
	for _, e := range iv.History {
		if e.Kind() == model.EntryEndLoop {
			endLoops++
		}
	}
	assert.Equal(t, 3, endLoops)
}

func TestSubmit_LoopWithEmptyOperandSkipsBody(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := loopFixture(t, host)

	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))

	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)

	next, err := Submit(iv, model.InputAnswerBody{Text: ""}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "closing", next.Label)
	assert.Equal(t, model.Completed, iv.State)

	for _, e := range iv.History {
		assert.NotEqual(t, model.EntryBeginLoop, e.Kind())
	}
}

// multipleChoiceFixture builds welcome -> picks -> closing, where picks is
// a multiple_choice question in the given mode and limit.
func multipleChoiceFixture(t *testing.T, host expr.Host, mode string, limit int) (*model.Questionnaire, *model.QuestionnaireLocalization) {
	return compileFixture(t, &compiler.SourceQuestionnaire{
		Name:     "survey",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{
				Label: "welcome", Type: "message", Text: "Welcome.",
				Transitions: []compiler.SourceTransition{{Destination: "picks"}},
			},
			{
				Label: "picks", Type: "multiple_choice", Text: "Pick some.",
				Mode: mode, Limit: limit,
				Options: []compiler.SourceOption{{Label: "a"}, {Label: "b"}, {Label: "c"}},
				Transitions: []compiler.SourceTransition{{Destination: "closing"}},
			},
			{Label: "closing", Type: "message", Text: "Thanks."},
		},
	}, host)
}

func submitToPicks(t *testing.T, host expr.Host, iv *model.Interview, ql *model.QuestionnaireLocalization) {
	t.Helper()
	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)
	require.Equal(t, "picks", iv.NextQuestion.Label)
}

func TestSubmit_SelectAtMostRejectsOverLimit(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "select_at_most", 2)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	_, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}, {Index: 1}, {Index: 2}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	assert.Equal(t, model.ErrAnswerIsIncorrect, err)
}

func TestSubmit_SelectAtMostAcceptsAtLimit(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "select_at_most", 2)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	next, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}, {Index: 1}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	assert.Equal(t, "closing", next.Label)
}

func TestSubmit_SelectAtMostZeroLimitIsUnbounded(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "select_at_most", 0)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	next, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}, {Index: 1}, {Index: 2}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	assert.Equal(t, "closing", next.Label)
}

func TestSubmit_SelectExactlyRejectsWrongCount(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "select_exactly", 2)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	_, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	assert.Equal(t, model.ErrAnswerIsIncorrect, err)
}

func TestSubmit_SelectExactlyAcceptsExactCount(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "select_exactly", 2)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	next, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}, {Index: 2}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	assert.Equal(t, "closing", next.Label)
}

func TestSubmit_RankAtMostRejectsOverLimit(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "rank_at_most", 1)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	_, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}, {Index: 1}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	assert.Equal(t, model.ErrAnswerIsIncorrect, err)
}

func TestSubmit_RankExactlyRejectsWrongCount(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "rank_exactly", 3)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	_, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}, {Index: 1}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	assert.Equal(t, model.ErrAnswerIsIncorrect, err)
}

func TestSubmit_RankExactlyAcceptsExactCount(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := multipleChoiceFixture(t, host, "rank_exactly", 3)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	submitToPicks(t, host, iv, ql)

	next, err := Submit(iv, model.MultipleChoiceAnswerBody{Choices: []*model.Choice{{Index: 0}, {Index: 1}, {Index: 2}}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	assert.Equal(t, "closing", next.Label)
}

// requiredInputFixture builds welcome -> reason -> closing, where reason is
// an input question whose Optional flag is parameterized.
func requiredInputFixture(t *testing.T, host expr.Host, optional bool) (*model.Questionnaire, *model.QuestionnaireLocalization) {
	return compileFixture(t, &compiler.SourceQuestionnaire{
		Name:     "survey",
		Language: "en",
		Questions: []compiler.SourceQuestion{
			{
				Label: "welcome", Type: "message", Text: "Welcome.",
				Transitions: []compiler.SourceTransition{{Destination: "reason"}},
			},
			{
				Label: "reason", Type: "input", Text: "Why?", Optional: optional,
				Transitions: []compiler.SourceTransition{{Destination: "closing"}},
			},
			{Label: "closing", Type: "message", Text: "Thanks."},
		},
	}, host)
}

func TestSubmit_RequiredInputRejectsEmptyText(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := requiredInputFixture(t, host, false)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)

	_, err = Submit(iv, model.InputAnswerBody{Text: ""}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	assert.Equal(t, model.ErrAnswerIsIncorrect, err)
}

func TestSubmit_OptionalInputAcceptsEmptyText(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := requiredInputFixture(t, host, true)
	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)

	next, err := Submit(iv, model.InputAnswerBody{Text: ""}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	assert.Equal(t, "closing", next.Label)
}

func TestRevise_ChangingBranchAnswerResectsHistory(t *testing.T) {
	host := expr.NewGojaHost()
	qn, ql := branchFixture(t, host)

	iv := &model.Interview{State: model.Initiated}
	require.NoError(t, Start(iv, qn, ql, StartMeta{Timestamp: 0}))
	_, err := Submit(iv, model.MessageAnswerBody{}, AnswerMeta{Timestamp: 1}, host, ql, nil)
	require.NoError(t, err)
	_, err = Submit(iv, model.SelectAnswerBody{Choice: &model.Choice{Index: 0}}, AnswerMeta{Timestamp: 2}, host, ql, nil)
	require.NoError(t, err)
	require.Equal(t, "why_bad", iv.NextQuestion.Label)
	_, err = Submit(iv, model.InputAnswerBody{Text: "everything"}, AnswerMeta{Timestamp: 3}, host, ql, nil)
	require.NoError(t, err)
	require.Equal(t, model.Completed, iv.State)
	require.Len(t, iv.History, 3)

	renderer := &localize.Renderer{Host: host}
	next, err := Revise(iv, 1, model.SelectAnswerBody{Choice: &model.Choice{Index: 1}}, AnswerMeta{Timestamp: 4}, host, ql, nil, renderer)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "closing", next.Label)
	assert.Equal(t, model.Completed, iv.State)

	// The why_bad answer no longer applies to the revised path.
	require.Len(t, iv.History, 2)
	assert.Equal(t, "welcome", iv.History[0].Question().Label)
	assert.Equal(t, "rating", iv.History[1].Question().Label)
}
