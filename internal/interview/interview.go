package interview

import (
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/graph"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
)

// StartMeta carries the request-scoped facts recorded once, at Start.
type StartMeta struct {
	Timestamp       int64
	IPAddress       string
	Geolocation     string
	IntervieweeID   string
	InterviewerID   string
	InterviewerUser string
}

// Start transitions iv from Initiated to Ongoing against a locked
// Questionnaire and one of its QuestionnaireLocalizations, and points it
// at the questionnaire's first question.
func Start(iv *model.Interview, qn *model.Questionnaire, ql *model.QuestionnaireLocalization, meta StartMeta) error {
	switch iv.State {
	case model.Initiated:
		// proceeds below
	case model.Completed:
		return model.ErrInterviewIsAlreadyCompleted
	default:
		return model.ErrInterviewIsAlreadyStarted
	}

	iv.StartTimestamp = meta.Timestamp
	iv.StartIPAddress = meta.IPAddress
	iv.StartGeolocation = meta.Geolocation
	iv.IntervieweeID = meta.IntervieweeID
	iv.InterviewerID = meta.InterviewerID
	iv.InterviewerUser = meta.InterviewerUser
	iv.Language = ql.Language
	iv.QuestionnaireLocalizationID = ql.ID

	iv.State = model.Ongoing
	setNextQuestion(iv, qn.FirstQuestion())
	return nil
}

// AnswerMeta carries the request-scoped facts recorded on each submitted
// Answer.
type AnswerMeta struct {
	Timestamp   int64
	IPAddress   string
	Geolocation string
}

// Submit validates body against iv's current next question, records it,
// and advances the interview, returning the resulting next question (nil
// once the interview completes).
func Submit(iv *model.Interview, body model.AnswerBody, meta AnswerMeta, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup) (*model.Question, error) {
	if !iv.Live() {
		return nil, model.ErrInterviewIsNotStarted
	}
	q := iv.NextQuestion
	if err := ValidateAnswerBody(q, body); err != nil {
		return nil, err
	}

	elapsed, totalElapsed := calculateElapsed(iv, meta.Timestamp)
	a := &model.Answer{
		ID:           idFunc(),
		Question:     q,
		IPAddress:    meta.IPAddress,
		Elapsed:      elapsed,
		TotalElapsed: totalElapsed,
		Timestamp:    meta.Timestamp,
		Geolocation:  meta.Geolocation,
		Body:         body,
	}
	iv.History = append(iv.History, &model.AnswerEntry{Answer: a})

	if err := advance(iv, host, ql, templates); err != nil {
		return nil, err
	}
	return iv.NextQuestion, nil
}

// calculateElapsed derives the two duration fields recorded on every
// Answer: milliseconds since the previous entry, and since the
// interview's StartTimestamp.
func calculateElapsed(iv *model.Interview, now int64) (elapsed, total int64) {
	total = now - iv.StartTimestamp
	prev := iv.StartTimestamp
	for i := len(iv.History) - 1; i >= 0; i-- {
		if ae, ok := iv.History[i].(*model.AnswerEntry); ok {
			prev = ae.Answer.Timestamp
			break
		}
	}
	return now - prev, total
}

// advance runs the interview forward from its current NextQuestion
// (just answered) to the next question that supports localization,
// recording any begin_loop/end_loop entries crossed along the way.
func advance(iv *model.Interview, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup) error {
	stack, err := BuildStackFromHistory(iv.History, host, ql, templates, iv.Language)
	if err != nil {
		return err
	}

	q, err := graph.RunTransitions(iv.NextQuestion, stack, ql, templates, iv.Language, host)
	if err != nil {
		return err
	}

	for {
		if q == nil {
			iv.State = model.Completed
			iv.NextQuestion = nil
			return nil
		}
		if q.SupportsLocalization() {
			setNextQuestion(iv, q)
			return nil
		}

		switch q.Body.Kind() {
		case model.KindBeginLoop:
			q, err = stepIntoBeginLoop(iv, stack, q, host, ql, templates)
		case model.KindEndLoop:
			q, err = stepIntoEndLoop(iv, stack, q, host, ql, templates)
		default:
			return model.ErrInternal
		}
		if err != nil {
			return err
		}
	}
}

func stepIntoBeginLoop(iv *model.Interview, stack *Stack, qbl *model.Question, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup) (*model.Question, error) {
	operandAns, err := stack.ProcessBeginLoop(qbl)
	if err != nil {
		return nil, err
	}
	if operandAns != nil {
		iv.History = append(iv.History, &model.BeginLoopEntry{BeginLoop: qbl, OperandAnswerID: operandAns.ID, Index: stack.Index()})
		return graph.RunTransitions(qbl, stack, ql, templates, iv.Language, host)
	}
	// Nothing to iterate over: jump straight to the matching end_loop's
	// own transitions without ever pushing a frame.
	qel := qbl.MatchingEndLoop
	return graph.RunTransitions(qel, stack, ql, templates, iv.Language, host)
}

func stepIntoEndLoop(iv *model.Interview, stack *Stack, qel *model.Question, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup) (*model.Question, error) {
	if stack.Empty() {
		return nil, model.ErrQuestionLoopLogicError(qel.Label)
	}
	iv.History = append(iv.History, &model.EndLoopEntry{EndLoop: qel})

	if stack.ProcessEndLoop() {
		qbl := stack.BeginLoop()
		return graph.RunTransitions(qbl, stack, ql, templates, iv.Language, host)
	}
	return graph.RunTransitions(qel, stack, ql, templates, iv.Language, host)
}

func setNextQuestion(iv *model.Interview, q *model.Question) {
	if q.IsFinal() {
		iv.State = model.Completed
	}
	iv.NextQuestion = q
}

// BuildStackFromHistory replays every entry of history into a fresh
// Stack, resolving each BeginLoopEntry's weak OperandAnswerID against the
// Answer entries also present in history.
func BuildStackFromHistory(history []model.Entry, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string) (*Stack, error) {
	byID := make(map[string]*model.Answer)
	for _, e := range history {
		if ae, ok := e.(*model.AnswerEntry); ok {
			byID[ae.Answer.ID] = ae.Answer
		}
	}

	stack := NewStack(host, ql, templates, language)
	resolve := func(id string) *model.Answer { return byID[id] }
	for _, e := range history {
		if err := stack.ProcessEntry(e, resolve); err != nil {
			return nil, err
		}
	}
	return stack, nil
}
