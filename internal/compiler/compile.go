package compiler

import (
	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/model"
)

// TemplateLibrary is the subset of the template-question store the
// compiler needs to resolve from_template references. Implementations
// live in internal/repository; tests can supply an in-memory map.
type TemplateLibrary interface {
	TemplateQuestionByLabel(label string) (*model.TemplateQuestion, bool)
	TemplateQuestionLocalization(templateID, language string) (*model.TemplateQuestionLocalization, bool)
}

// Compiler turns SourceQuestionnaires and their localizations into the
// internal model graph. It holds no mutable state of its own beyond the
// Expr host and template library it was constructed with; every Compile*
// call is independent.
type Compiler struct {
	Expr      expr.Host
	Templates TemplateLibrary
}

func New(host expr.Host, templates TemplateLibrary) *Compiler {
	return &Compiler{Expr: host, Templates: templates}
}

// idFunc generates document ids for newly compiled entities. Replaced in
// tests for determinism; defaults to google/uuid in production wiring
// (see internal/compiler/ids.go).
var idFunc = newUUID

// Compile runs passes A through D plus the first-localization pass E,
// returning the checked Questionnaire and its first QuestionnaireLocalization.
// On any error no partial state escapes: the caller must not persist
// either return value.
func (c *Compiler) Compile(src *SourceQuestionnaire) (*model.Questionnaire, *model.QuestionnaireLocalization, error) {
	if src.Name == "" {
		return nil, nil, model.ErrSourceQuestionnaireNameIsEmpty
	}
	if len(src.Questions) == 0 {
		return nil, nil, model.ErrSourceQuestionnaireHasNoQuestions
	}

	qn := &model.Questionnaire{ID: idFunc(), Name: src.Name}

	byLabel := make(map[string]*model.Question, len(src.Questions))
	srcByLabel := make(map[string]*SourceQuestion, len(src.Questions))

	// Pass A: label map & ordering, loop-nest bookkeeping.
	var nestStack []*model.Question
	for i := range src.Questions {
		sq := &src.Questions[i]
		if sq.Label == "" {
			return nil, nil, model.ErrSourceQuestionnaireContainsNullQuestion
		}
		if !validLabel(sq.Label) {
			return nil, nil, model.ErrQuestionLabelIsInvalid(sq.Label)
		}
		if _, dup := byLabel[sq.Label]; dup {
			return nil, nil, model.ErrQuestionLabelIsADuplicate(sq.Label)
		}

		q := &model.Question{ID: idFunc(), Label: sq.Label, Style: sq.Style, Index: i}

		switch sq.Type {
		case "end_loop":
			if len(nestStack) == 0 {
				return nil, nil, model.ErrQuestionLoopIsNotBalanced(sq.Label)
			}
			begin := nestStack[len(nestStack)-1]
			nestStack = nestStack[:len(nestStack)-1]
			q.LoopNest = append([]*model.Question{}, nestStack...)
			q.MatchingBeginLoop = begin
			begin.MatchingEndLoop = q
		case "begin_loop":
			q.LoopNest = append([]*model.Question{}, nestStack...)
			nestStack = append(nestStack, q)
		default:
			q.LoopNest = append([]*model.Question{}, nestStack...)
		}

		byLabel[sq.Label] = q
		srcByLabel[sq.Label] = sq
	}
	if len(nestStack) != 0 {
		return nil, nil, model.ErrQuestionLoopIsNotClosed(nestStack[len(nestStack)-1].Label)
	}

	// Pass B: body construction, attaching each question as it's built so
	// later questions (and the localization pass) can reference earlier
	// ones by pointer.
	for i := range src.Questions {
		sq := &src.Questions[i]
		q := byLabel[sq.Label]
		body, err := c.buildBody(sq, q, byLabel)
		if err != nil {
			return nil, nil, err
		}
		q.Body = body

		fns, err := c.buildFunctions(sq.Functions, q, byLabel)
		if err != nil {
			return nil, nil, err
		}
		q.TextFunctions = fns

		qn.Questions = append(qn.Questions, q)
	}

	// Pass C: transition linking.
	for i := range src.Questions {
		sq := &src.Questions[i]
		q := byLabel[sq.Label]
		transitions, err := c.buildTransitions(sq, q, byLabel, qn)
		if err != nil {
			return nil, nil, err
		}
		q.Transitions = transitions
	}

	// Pass D: loop-operand check.
	for _, q := range qn.Questions {
		bl, ok := q.Body.(*model.BeginLoopBody)
		if !ok {
			continue
		}
		if err := c.checkLoopOperand(q, bl); err != nil {
			return nil, nil, err
		}
	}

	// Pass E: first localization, built in step with Pass B's bodies.
	ql, err := c.buildFirstLocalization(qn, src, byLabel)
	if err != nil {
		return nil, nil, err
	}

	return qn, ql, nil
}

func (c *Compiler) buildBody(sq *SourceQuestion, q *model.Question, byLabel map[string]*model.Question) (model.QuestionBody, error) {
	switch sq.Type {
	case "message":
		return model.MessageBody{}, nil
	case "input":
		return model.InputBody{Optional: sq.Optional, HasComment: sq.HasComment}, nil
	case "select":
		opts, err := buildOptions(sq.Options, q.Label)
		if err != nil {
			return nil, err
		}
		return model.SelectBody{Options: opts, Randomize: sq.Randomize, HasComment: sq.HasComment}, nil
	case "multiple_choice":
		mode, err := parseMode(sq.Mode, q.Label)
		if err != nil {
			return nil, err
		}
		opts, err := buildOptions(sq.Options, q.Label)
		if err != nil {
			return nil, err
		}
		return model.MultipleChoiceBody{Mode: mode, Options: opts, Randomize: sq.Randomize, HasComment: sq.HasComment, Limit: sq.Limit}, nil
	case "from_template":
		if sq.Optional || sq.HasComment || len(sq.Options) != 0 || sq.Randomize || sq.Mode != "" || sq.Limit != 0 || sq.Text != "" {
			return nil, model.ErrSourceQuestionFromTemplateHasABody(q.Label)
		}
		if sq.Template == "" {
			return nil, model.ErrTemplateQuestionDoesNotExistWithLabel(q.Label)
		}
		tq, ok := c.Templates.TemplateQuestionByLabel(sq.Template)
		if !ok {
			return nil, model.ErrTemplateQuestionDoesNotExistWithLabel(sq.Template)
		}
		return model.FromTemplateBody{Template: tq}, nil
	case "begin_loop":
		opQ, ok := byLabel[sq.Question]
		if !ok {
			return nil, model.ErrQuestionBeginLoopRefersToUnknownQuestion(q.Label)
		}
		if sq.Operand == "" {
			return nil, model.ErrQuestionBeginLoopHasNoOperand(q.Label)
		}
		if sq.Variable == "" || !validLabel(sq.Variable) {
			return nil, model.ErrQuestionBeginLoopVariableIsInvalid(q.Label)
		}
		return &model.BeginLoopBody{OperandQuestion: opQ, Variable: sq.Variable, OperandExpr: sq.Operand}, nil
	case "end_loop":
		return model.EndLoopBody{}, nil
	case "":
		return nil, model.ErrSourceQuestionTypeIsMissing(q.Label)
	default:
		return nil, model.ErrSourceQuestionTypeIsInvalid(q.Label)
	}
}

func buildOptions(src []SourceOption, owner string) ([]*model.Option, error) {
	opts := make([]*model.Option, 0, len(src))
	for _, so := range src {
		if so.Label == "" {
			return nil, model.ErrSourceQuestionContainsNullOption(owner)
		}
		opts = append(opts, &model.Option{ID: idFunc(), HasComment: so.HasComment})
	}
	if len(opts) == 0 {
		return nil, model.ErrSourceQuestionHasInvalidOptions(owner)
	}
	return opts, nil
}

func parseMode(mode, owner string) (model.MultipleChoiceMode, error) {
	switch model.MultipleChoiceMode(mode) {
	case model.SelectAtMost, model.SelectExactly, model.RankAtMost, model.RankExactly:
		return model.MultipleChoiceMode(mode), nil
	default:
		return "", model.ErrSourceQuestionBodyIsIncorrect(owner)
	}
}

func (c *Compiler) buildFunctions(src []SourceFunction, owner *model.Question, byLabel map[string]*model.Question) ([]*model.Function, error) {
	fns := make([]*model.Function, 0, len(src))
	for _, sf := range src {
		fn, err := c.buildFunction(&sf, owner, byLabel)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

func (c *Compiler) buildFunction(sf *SourceFunction, owner *model.Question, byLabel map[string]*model.Question) (*model.Function, error) {
	if sf == nil || sf.Code == "" {
		return nil, model.ErrFunctionHasNoCode(owner.Label)
	}
	if err := c.Expr.Compile(sf.Code); err != nil {
		return nil, model.ErrSourceQuestionTransitionConditionIsIncorrect(owner.Label, "")
	}
	params := make([]*model.Question, 0, len(sf.Parameters))
	for _, label := range sf.Parameters {
		p, ok := byLabel[label]
		if !ok {
			return nil, model.ErrFunctionParameterDoesNotExist(owner.Label)
		}
		if p == owner {
			return nil, model.ErrFunctionParameterRefersToSelf(owner.Label)
		}
		if p.Index >= owner.Index {
			return nil, model.ErrFunctionParameterRefersToSubsequentQuestion(owner.Label)
		}
		if !sameLoopNest(p, owner) {
			return nil, model.ErrFunctionParameterRefersToQuestionWithDifferentLoopNest(owner.Label)
		}
		params = append(params, p)
	}
	return &model.Function{Code: sf.Code, Parameters: params}, nil
}

func sameLoopNest(a, b *model.Question) bool {
	if len(a.LoopNest) != len(b.LoopNest) {
		return false
	}
	for i := range a.LoopNest {
		if a.LoopNest[i] != b.LoopNest[i] {
			return false
		}
	}
	return true
}

func (c *Compiler) buildTransitions(sq *SourceQuestion, q *model.Question, byLabel map[string]*model.Question, qn *model.Questionnaire) ([]*model.Transition, error) {
	if len(sq.Transitions) == 0 {
		if q.CanBeFinal() {
			return nil, nil
		}
		next := qn.NextInOrder(q)
		if next == nil {
			return nil, model.ErrSourceQuestionTransitionIsMissing(q.Label)
		}
		return []*model.Transition{{Destination: next}}, nil
	}

	transitions := make([]*model.Transition, 0, len(sq.Transitions))
	for i, st := range sq.Transitions {
		dest, ok := byLabel[st.Destination]
		if !ok {
			return nil, model.ErrSourceQuestionTransitionDoesNotExist(q.Label, st.Destination)
		}
		if dest == q {
			return nil, model.ErrSourceQuestionTransitionsToItself(q.Label)
		}
		if dest.Index < q.Index {
			return nil, model.ErrSourceQuestionTransitionsToPreviousQuestion(q.Label, dest.Label)
		}

		if st.Condition != nil && st.Code != nil {
			return nil, model.ErrTransitionHasBothConditionAndCode(q.Label)
		}
		catchAll := st.Condition == nil && st.Code == nil

		isLast := i == len(sq.Transitions)-1
		if catchAll && !isLast {
			return nil, model.ErrSourceQuestionTransitionCatchAllIsNotLast(q.Label, dest.Label)
		}

		if err := checkLoopCrossing(q, dest); err != nil {
			return nil, err
		}

		var fn *model.Function
		var ferr error
		switch {
		case st.Condition != nil:
			fn, ferr = c.buildFunction(st.Condition, q, byLabel)
		case st.Code != nil:
			fn, ferr = c.buildFunction(st.Code, q, byLabel)
		}
		if ferr != nil {
			return nil, ferr
		}

		transitions = append(transitions, &model.Transition{Condition: fn, Destination: dest})
	}

	if !transitions[len(transitions)-1].CatchAll() {
		last := transitions[len(transitions)-1]
		return nil, model.ErrSourceQuestionTransitionsLackCatchAll(q.Label, last.Destination.Label)
	}

	return transitions, nil
}

// checkLoopCrossing enforces that a transition may not cross a loop
// boundary except for the three named exceptions.
func checkLoopCrossing(q, dest *model.Question) error {
	if q.Body.Kind() == model.KindBeginLoop && dest.Body.Kind() == model.KindBeginLoop {
		return model.ErrSourceQuestionBeginLoopTransitionsToBeginLoop(q.Label, dest.Label)
	}
	if sameLoopNest(q, dest) {
		return nil
	}
	if dest.Body.Kind() == model.KindEndLoop && dest.MatchingBeginLoop == q.ParentLoop() {
		return nil
	}
	if q.Body.Kind() == model.KindBeginLoop && dest == q.MatchingEndLoop {
		return nil
	}
	return model.ErrSourceQuestionTransitionsAcrossLoop(q.Label, dest.Label)
}

func (c *Compiler) checkLoopOperand(q *model.Question, bl *model.BeginLoopBody) error {
	op := bl.OperandQuestion
	if !sameLoopNest(op, q) {
		return model.ErrQuestionBeginLoopRefersToQuestionWithDifferentLoopNest(q.Label)
	}
	if op.IsLoop() {
		return model.ErrQuestionBeginLoopRefersToUnanswerableQuestion(q.Label)
	}
	if op.Index >= q.Index {
		return model.ErrQuestionBeginLoopRefersToUnknownQuestion(q.Label)
	}
	return nil
}

func (c *Compiler) buildFirstLocalization(qn *model.Questionnaire, src *SourceQuestionnaire, byLabel map[string]*model.Question) (*model.QuestionnaireLocalization, error) {
	ql := &model.QuestionnaireLocalization{
		ID:              idFunc(),
		QuestionnaireID: qn.ID,
		Questionnaire:   qn,
		Language:        src.Language,
		Title:           src.Title,
		Logo:            src.Logo,
		Name:            src.Name,
	}

	for i := range src.Questions {
		sq := &src.Questions[i]
		q := byLabel[sq.Label]
		if !q.SupportsLocalization() {
			continue
		}
		ql.QuestionLocalizations = append(ql.QuestionLocalizations, &model.QuestionLocalization{
			ID:                  idFunc(),
			QuestionID:           q.ID,
			Question:             q,
			Text:                 sq.Text,
			OptionLocalizations:  optionLocalizationsFor(q, sq.Options),
			CommentLabel:         sq.CommentLabel,
		})
	}

	ql.LastChecked = qn.ChangeCount
	return ql, nil
}

func optionLocalizationsFor(q *model.Question, src []SourceOption) []*model.OptionLocalization {
	var opts []*model.Option
	switch b := q.Body.(type) {
	case model.SelectBody:
		opts = b.Options
	case model.MultipleChoiceBody:
		opts = b.Options
	default:
		return nil
	}
	out := make([]*model.OptionLocalization, 0, len(opts))
	for i, o := range opts {
		var label, comment string
		if i < len(src) {
			label, comment = src[i].Label, src[i].CommentLabel
		}
		out = append(out, &model.OptionLocalization{OptionID: o.ID, Label: label, CommentLabel: comment})
	}
	return out
}
