package graph

import (
	"fmt"

	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/localize"
	"github.com/metaspex/interviews/internal/model"
)

// ComputeLoopOperand evaluates a begin_loop's operand expression against
// its operand question's current answer and returns the JSON-like array
// it produces (or nil if the expression yields null/undefined). The
// operand question's label is bound to its answer data before the
// expression runs; the expression is expected to assign its result to R.
func ComputeLoopOperand(bl *model.BeginLoopBody, operandAnswer *model.Answer, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host) (any, error) {
	if err := injectOperand(bl, operandAnswer, ql, templates, language, host); err != nil {
		return nil, err
	}
	v, err := host.Execute("let R=null;" + bl.OperandExpr + ";if(R==undefined){null}else R")
	if err != nil && err != expr.ErrUndefined {
		return nil, err
	}
	return v, nil
}

// LoopVariableValue evaluates the operand expression as ComputeLoopOperand
// does, then indexes the result at index, returning the value to bind to
// the loop's variable for that pass. A nil result (operand absent or
// index out of range) surfaces as model.ErrQuestionLoopLogicError.
func LoopVariableValue(bl *model.BeginLoopBody, operandAnswer *model.Answer, index int, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host) (any, error) {
	if err := injectOperand(bl, operandAnswer, ql, templates, language, host); err != nil {
		return nil, err
	}
	code := fmt.Sprintf("let R=null;%s;if(R==undefined){null}else{R=R[%d];if(R==undefined){null}else R}", bl.OperandExpr, index)
	v, err := host.Execute(code)
	if err != nil {
		if err == expr.ErrUndefined {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func injectOperand(bl *model.BeginLoopBody, operandAnswer *model.Answer, ql *model.QuestionnaireLocalization, templates localize.TemplateLookup, language string, host expr.Host) error {
	if operandAnswer == nil {
		host.Inject(bl.OperandQuestion.Label, nil)
		return nil
	}
	data, err := localize.AnswerData(operandAnswer, ql, templates, language)
	if err != nil {
		return err
	}
	host.Inject(bl.OperandQuestion.Label, data)
	return nil
}
