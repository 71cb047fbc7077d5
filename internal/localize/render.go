package localize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metaspex/interviews/internal/expr"
	"github.com/metaspex/interviews/internal/lang"
	"github.com/metaspex/interviews/internal/model"
)

// StackLookup is the slice of the interview's stack the renderer needs:
// per-question answer lookup (innermost frame first) and per-name loop
// variable resolution (innermost first). internal/interview's stack
// implements this.
type StackLookup interface {
	FindAnswer(q *model.Question) *model.Answer
	LoopVariable(name string) (any, bool)
}

// Renderer evaluates a question's text-functions and substitutes
// @{N}/@{NAME} escapes in localized text.
type Renderer struct {
	Host      expr.Host
	Templates TemplateLookup
}

// Text renders q's localized text against stack for the interview's
// language, memoizing each text-function's return value at most once.
func (r *Renderer) Text(text string, q *model.Question, ql *model.QuestionnaireLocalization, language string, stack StackLookup) (string, error) {
	info, ok := lang.Lookup(language)
	if !ok {
		info = lang.Info{}
	}

	memo := make(map[int]string)
	var out strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		if c != '@' || i+1 >= len(text) || text[i+1] != '{' {
			out.WriteByte(c)
			i++
			continue
		}
		close := strings.IndexByte(text[i+2:], '}')
		if close < 0 {
			// Unterminated "@{...": passed through verbatim.
			out.WriteString(text[i:])
			break
		}
		inner := text[i+2 : i+2+close]
		i = i + 2 + close + 1

		if n, err := strconv.Atoi(inner); err == nil {
			val, cached := memo[n]
			if !cached {
				v, err := r.callTextFunction(q, n, ql, language, info, stack)
				if err != nil {
					return "", err
				}
				val = canonical(v)
				memo[n] = val
			}
			out.WriteString(val)
			continue
		}

		v, ok := stack.LoopVariable(inner)
		if !ok {
			return "", model.ErrQuestionLoopVariableUnknown(q.Label)
		}
		out.WriteString(canonical(v))
	}
	return out.String(), nil
}

func (r *Renderer) callTextFunction(q *model.Question, n int, ql *model.QuestionnaireLocalization, language string, info lang.Info, stack StackLookup) (any, error) {
	if n < 0 || n >= len(q.TextFunctions) {
		return nil, model.ErrFunctionCallOutOfBounds(q.Label)
	}
	fn := q.TextFunctions[n]
	if fn.Empty() {
		return nil, model.ErrFunctionHasNoCode(q.Label)
	}

	for _, p := range fn.Parameters {
		a := stack.FindAnswer(p)
		if a == nil {
			r.Host.Inject(p.Label, nil)
			continue
		}
		data, err := AnswerData(a, ql, r.Templates, language)
		if err != nil {
			return nil, err
		}
		r.Host.Inject(p.Label, data)
	}
	r.Host.Inject("language", float64(info.Code))
	r.Host.Inject("language_str2", info.Str2)

	v, err := r.Host.Execute(fn.Code)
	if err != nil {
		if err == expr.ErrUndefined {
			return nil, model.ErrFunctionHasNoCode(q.Label)
		}
		return nil, err
	}
	return v, nil
}

// canonical renders a JSON-like value the way the original wire format
// substitutes it: strings verbatim (no quotes), everything else in its
// canonical form.
func canonical(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}
