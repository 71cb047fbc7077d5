package interview

import (
	"reflect"

	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/graph"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
)

// Revise replaces the answer at history position pos with newBody,
// grafting it onto the existing Answer (preserving its id, so any
// BeginLoopEntry weakly referencing it by OperandAnswerID stays valid),
// then walks forward re-evaluating every subsequent transition. Entries
// whose outcome does not change are kept and replayed into both the old
// and new stacks; the first entry whose outcome does change truncates
// the history there. Resected entries (answers to a question the new
// path skips) are dropped outright. Returns the resulting next question.
func Revise(iv *model.Interview, pos int, newBody model.AnswerBody, meta AnswerMeta, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, renderer *localize.Renderer) (*model.Question, error) {
	if pos < 0 || pos >= len(iv.History) {
		return nil, model.ErrAnswerIndexDoesNotExist(pos)
	}
	ae, ok := iv.History[pos].(*model.AnswerEntry)
	if !ok {
		return nil, model.ErrAnswerIndexDoesNotExist(pos)
	}
	pa := ae.Answer
	q := pa.Question
	if err := ValidateAnswerBody(q, newBody); err != nil {
		return nil, err
	}

	pts, err := BuildStackFromHistory(iv.History[:pos], host, ql, templates, iv.Language)
	if err != nil {
		return nil, err
	}
	nts, err := BuildStackFromHistory(iv.History[:pos], host, ql, templates, iv.Language)
	if err != nil {
		return nil, err
	}

	old := *pa // snapshot before grafting, for comparison against the revised content.
	pa.Body = newBody
	pa.IPAddress = meta.IPAddress
	pa.Timestamp = meta.Timestamp
	pa.Geolocation = meta.Geolocation

	pts.replaceAnswer(&old)
	nts.replaceAnswer(pa)

	i := pos + 1
	for {
		nnetq, err := graph.RunTransitions(q, nts, ql, templates, iv.Language, host)
		if err != nil {
			return nil, err
		}
		if nnetq == nil {
			iv.History = iv.History[:i]
			iv.State = model.Completed
			iv.NextQuestion = nil
			return nil, nil
		}

		if i >= len(iv.History) {
			return finishRevise(iv, nts, nnetq, host, ql, templates)
		}

		pnetq := iv.History[i].Question()
		if nnetq != pnetq {
			iv.History, i = resectHistory(iv.History, i, nnetq)
			if i >= len(iv.History) {
				return finishRevise(iv, nts, nnetq, host, ql, templates)
			}
		}

		nee := iv.History[i]
		if isImpactedBy(nee, &old) {
			impacted, err := processImpactedEntry(pts, nts, &old, pa, iv.Language, nee, renderer, ql, templates, host)
			if err != nil {
				return nil, err
			}
			if impacted {
				iv.History = iv.History[:i]
				return finishRevise(iv, nts, nnetq, host, ql, templates)
			}
		} else {
			resolve := answerResolver(iv.History)
			if err := pts.ProcessEntry(nee, resolve); err != nil {
				return nil, err
			}
			if err := nts.ProcessEntry(nee, resolve); err != nil {
				return nil, err
			}
		}

		q = nnetq
		i++
	}
}

func finishRevise(iv *model.Interview, nts *Stack, q *model.Question, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup) (*model.Question, error) {
	final, err := findNextRegularQuestion(nts, q, host, ql, templates, iv.Language)
	if err != nil {
		return nil, err
	}
	setNextQuestion(iv, final)
	return iv.NextQuestion, nil
}

// findNextRegularQuestion scans forward from q, silently pushing and
// popping loop frames on stack without recording any history, until it
// reaches a question that supports localization. It is used only to
// preview the question a respondent will see next; the corresponding
// begin_loop/end_loop entries are recorded for real once that question
// is actually answered.
func findNextRegularQuestion(stack *Stack, q *model.Question, host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string) (*model.Question, error) {
	for {
		switch q.Body.Kind() {
		case model.KindBeginLoop:
			if _, err := stack.ProcessBeginLoop(q); err != nil {
				return nil, err
			}
		case model.KindEndLoop:
			stack.ProcessEndLoop()
		default:
			return q, nil
		}
		next, err := graph.RunTransitions(q, stack, ql, templates, language, host)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		q = next
	}
}

// resectHistory drops entries starting at i until it finds one that
// answers target (left in place, at the returned index) or runs off the
// end of history.
func resectHistory(history []model.Entry, i int, target *model.Question) ([]model.Entry, int) {
	for i < len(history) {
		if history[i].Question() == target {
			return history, i
		}
		history = append(history[:i], history[i+1:]...)
	}
	return history, i
}

// isImpactedBy reports whether e's outcome could change as a result of
// pa's content changing: an AnswerEntry is impacted if its question's
// text-functions take pa's question as a parameter; a BeginLoopEntry is
// impacted iff it is the one that iterates over pa itself.
func isImpactedBy(e model.Entry, pa *model.Answer) bool {
	switch ent := e.(type) {
	case *model.AnswerEntry:
		return usesAsParameter(ent.Answer.Question, pa.Question)
	case *model.BeginLoopEntry:
		return ent.OperandAnswerID == pa.ID
	default:
		return false
	}
}

func usesAsParameter(q, target *model.Question) bool {
	for _, fn := range q.TextFunctions {
		for _, p := range fn.Parameters {
			if p == target {
				return true
			}
		}
	}
	return false
}

// processImpactedEntry reports whether e's outcome actually changed
// between the old and new stacks (true: the history must be truncated
// here), updating both stacks to include e when it did not.
func processImpactedEntry(pts, nts *Stack, pa, na *model.Answer, language string, e model.Entry, renderer *localize.Renderer, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, host expr.Host) (bool, error) {
	switch ent := e.(type) {
	case *model.AnswerEntry:
		a := ent.Answer
		q := a.Question
		text, _, _, err := localize.Resolve(q, ql, templates, language)
		if err != nil {
			return false, err
		}
		ptxt, err := renderer.Text(text, q, ql, language, pts)
		if err != nil {
			return false, err
		}
		ntxt, err := renderer.Text(text, q, ql, language, nts)
		if err != nil {
			return false, err
		}
		if ptxt != ntxt {
			return true, nil
		}
		pts.replaceAnswer(a)
		nts.replaceAnswer(a)
		return false, nil

	case *model.BeginLoopEntry:
		bl := ent.BeginLoop.Body.(*model.BeginLoopBody)
		plov, err := graph.ComputeLoopOperand(bl, pa, ql, templates, language, host)
		if err != nil {
			return false, err
		}
		nlov, err := graph.ComputeLoopOperand(bl, na, ql, templates, language, host)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(plov, nlov) {
			return true, nil
		}
		if _, err := pts.ProcessBeginLoop(ent.BeginLoop); err != nil {
			return false, err
		}
		if _, err := nts.ProcessBeginLoop(ent.BeginLoop); err != nil {
			return false, err
		}
		return false, nil

	default:
		return false, nil
	}
}

func answerResolver(history []model.Entry) func(id string) *model.Answer {
	byID := make(map[string]*model.Answer)
	for _, e := range history {
		if ae, ok := e.(*model.AnswerEntry); ok {
			byID[ae.Answer.ID] = ae.Answer
		}
	}
	return func(id string) *model.Answer { return byID[id] }
}
