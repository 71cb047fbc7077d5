// Package interview replays an Interview's history into a live stack of
// loop frames and drives the state machine (Start, Submit, Advance) plus
// answer revision and resection. It is the runtime counterpart of
// internal/compiler: the compiler builds the graph once, this package
// walks it once per interview turn.
package interview

import (
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/graph"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
)

// frame is one nested loop level: the begin_loop question it belongs to,
// the answer its operand was computed from, the operand array itself and
// the current 0-based index into it, plus every answer recorded since
// the frame was pushed (innermost nest only; an outer frame's answers
// are not visible here; Stack.FindAnswer walks frame by frame).
type frame struct {
	beginLoop   *model.Question
	operandAns  *model.Answer
	operand     any
	operandSize int
	index       int

	loopVarCached bool
	loopVar       any

	answers map[*model.Question]*model.Answer
}

func (f *frame) reset() {
	f.loopVarCached = false
	f.loopVar = nil
}

// Stack is the live, in-memory counterpart of the original's the_stack:
// a sequence of loop frames built by replaying an Interview's History, or
// incrementally advanced during Submit/Advance.
type Stack struct {
	frames     []*frame
	topAnswers map[*model.Question]*model.Answer

	host      expr.Host
	ql        *model.QuestionnaireLocalization
	templates localize.TemplateLookup
	language  string
}

func NewStack(host expr.Host, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string) *Stack {
	return &Stack{
		topAnswers: make(map[*model.Question]*model.Answer),
		host:       host,
		ql:         ql,
		templates:  templates,
		language:   language,
	}
}

func (s *Stack) Empty() bool { return len(s.frames) == 0 }

func (s *Stack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Index returns the current loop index of the innermost frame. Panics if
// the stack is empty; callers only call this once they know a begin_loop
// has been processed.
func (s *Stack) Index() int {
	return s.top().index
}

// BeginLoop returns the innermost frame's begin_loop question, or nil if
// the stack is empty.
func (s *Stack) BeginLoop() *model.Question {
	if t := s.top(); t != nil {
		return t.beginLoop
	}
	return nil
}

// FindAnswer resolves q's current answer, searching frames innermost
// first and falling back to the top-level map. A question answered
// inside a now-popped loop iteration is invisible outside it.
func (s *Stack) FindAnswer(q *model.Question) *model.Answer {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if a, ok := s.frames[i].answers[q]; ok {
			return a
		}
	}
	if a, ok := s.topAnswers[q]; ok {
		return a
	}
	return nil
}

// LoopVariable resolves name against the innermost-first chain of loop
// variables currently in scope.
func (s *Stack) LoopVariable(name string) (any, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if f.beginLoop.Body.(*model.BeginLoopBody).Variable != name {
			continue
		}
		if !f.loopVarCached {
			v, err := graph.LoopVariableValue(f.beginLoop.Body.(*model.BeginLoopBody), f.operandAns, f.index, s.ql, s.templates, s.language, s.host)
			if err != nil {
				return nil, false
			}
			f.loopVar, f.loopVarCached = v, true
		}
		return f.loopVar, true
	}
	return nil, false
}

// FindLoopOperandAnswer returns the operand answer of the frame whose
// begin_loop is qbl, searching innermost first.
func (s *Stack) FindLoopOperandAnswer(qbl *model.Question) *model.Answer {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].beginLoop == qbl {
			return s.frames[i].operandAns
		}
	}
	return nil
}

func (s *Stack) replaceAnswer(a *model.Answer) {
	if t := s.top(); t != nil {
		t.answers[a.Question] = a
		return
	}
	s.topAnswers[a.Question] = a
}

// pushOrContinueBeginLoop mirrors the_stack::process_begin_loop(lang, qbl,
// loa): it pushes a fresh frame unless the innermost frame already
// belongs to qbl.
func (s *Stack) pushOrContinueBeginLoop(qbl *model.Question, operandAns *model.Answer) error {
	if t := s.top(); t != nil && t.beginLoop == qbl {
		return nil
	}
	bl := qbl.Body.(*model.BeginLoopBody)
	operand, err := graph.ComputeLoopOperand(bl, operandAns, s.ql, s.templates, s.language, s.host)
	if err != nil {
		return err
	}
	size := 0
	if arr, ok := operand.([]any); ok {
		size = len(arr)
	}
	s.frames = append(s.frames, &frame{
		beginLoop:   qbl,
		operandAns:  operandAns,
		operand:     operand,
		operandSize: size,
		answers:     make(map[*model.Question]*model.Answer),
	})
	return nil
}

// ProcessBeginLoop mirrors the two-argument the_stack::process_begin_loop:
// given only the begin_loop question, it resolves its operand question's
// current answer and pushes a frame iff the resulting array's first
// element exists. It returns the operand answer used (nil if the loop
// has nothing to iterate over, in which case the caller must skip to the
// matching end_loop without pushing anything).
func (s *Stack) ProcessBeginLoop(qbl *model.Question) (*model.Answer, error) {
	bl := qbl.Body.(*model.BeginLoopBody)
	operandAns := s.FindAnswer(bl.OperandQuestion)
	if operandAns == nil {
		return nil, nil
	}
	first, err := graph.LoopVariableValue(bl, operandAns, 0, s.ql, s.templates, s.language, s.host)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}
	if err := s.pushOrContinueBeginLoop(qbl, operandAns); err != nil {
		return nil, err
	}
	return operandAns, nil
}

// ProcessEndLoop mirrors the_stack::process_end_loop: advances the
// innermost frame's index, popping it once exhausted. Returns true if
// iteration continues (frame still present), false if the frame was
// popped.
func (s *Stack) ProcessEndLoop() bool {
	t := s.top()
	if t == nil {
		return false
	}
	t.reset()
	t.index++
	if t.index == t.operandSize {
		s.frames = s.frames[:len(s.frames)-1]
		return false
	}
	return true
}

// ProcessEntry replays one history Entry into the stack, resolving a
// BeginLoopEntry's weak OperandAnswerID via resolve.
func (s *Stack) ProcessEntry(e model.Entry, resolve func(id string) *model.Answer) error {
	switch ent := e.(type) {
	case *model.AnswerEntry:
		s.replaceAnswer(ent.Answer)
	case *model.BeginLoopEntry:
		operandAns := resolve(ent.OperandAnswerID)
		if operandAns == nil {
			return model.ErrQuestionLoopLogicError(ent.BeginLoop.Label)
		}
		if err := s.pushOrContinueBeginLoop(ent.BeginLoop, operandAns); err != nil {
			return err
		}
	case *model.EndLoopEntry:
		if s.Empty() {
			return model.ErrQuestionLoopLogicError(ent.EndLoop.Label)
		}
		s.ProcessEndLoop()
	}
	return nil
}
