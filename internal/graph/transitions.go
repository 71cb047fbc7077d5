// Package graph runs the compiled question graph forward: evaluating a
// question's transitions to find the next destination, and computing a
// loop's operand array and per-index variable value. It consumes only
// the compiler's output (internal/model) and the expression host
// (internal/expr); the stack/history bookkeeping lives in
// internal/interview.
package graph

import (
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/lang"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
)

// AnswerLookup resolves the answer recorded for a question in the
// current stack, or nil if it was never reached (skipped by a prior
// transition).
type AnswerLookup interface {
	FindAnswer(q *model.Question) *model.Answer
}

// RunTransitions evaluates q's transitions in order against lookup and
// returns the first whose condition is truthy, or the catch-all. The
// compiler guarantees a catch-all exists whenever q.CanBeFinal() is
// false and q has transitions, so a nil, nil return only happens for a
// terminal question with none.
func RunTransitions(q *model.Question, lookup AnswerLookup, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host) (*model.Question, error) {
	for _, t := range q.Transitions {
		if t.CatchAll() {
			return t.Destination, nil
		}
		truthy, err := evalCondition(q, t.Condition, lookup, ql, templates, language, host)
		if err != nil {
			return nil, err
		}
		if truthy {
			return t.Destination, nil
		}
	}
	return nil, nil
}

func evalCondition(q *model.Question, fn *model.Function, lookup AnswerLookup, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host) (bool, error) {
	if err := injectParameters(q, fn, lookup, ql, templates, language, host); err != nil {
		return false, err
	}
	v, err := host.Execute(fn.Code)
	if err != nil {
		if err == expr.ErrUndefined {
			return false, nil
		}
		return false, err
	}
	return host.IsTruthy(v), nil
}

// injectParameters binds q's own current answer data under its own
// label, so a transition condition evaluated at q can read the answer
// that just got it there without declaring q itself as a parameter
// (the compiler forbids that as redundant self-reference). It then
// binds each of fn's declared parameter questions plus the two system
// language names, ahead of the next Execute call.
func injectParameters(q *model.Question, fn *model.Function, lookup AnswerLookup, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host) error {
	if err := injectAnswer(q, lookup, ql, templates, language, host); err != nil {
		return err
	}
	for _, p := range fn.Parameters {
		if err := injectAnswer(p, lookup, ql, templates, language, host); err != nil {
			return err
		}
	}
	info, ok := lang.Lookup(language)
	if !ok {
		info = lang.Info{}
	}
	host.Inject("language", float64(info.Code))
	host.Inject("language_str2", info.Str2)
	return nil
}

func injectAnswer(p *model.Question, lookup AnswerLookup, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host) error {
	a := lookup.FindAnswer(p)
	if a == nil {
		host.Inject(p.Label, nil)
		return nil
	}
	data, err := localize.AnswerData(a, ql, templates, language)
	if err != nil {
		return err
	}
	host.Inject(p.Label, data)
	return nil
}
