package model

// Questionnaire owns its Questions (which in turn own their Transitions,
// Bodies, Options and text-functions). ChangeCount increments on every
// mutation that could invalidate an existing QuestionnaireLocalization's
// completeness check; Locked becomes true the moment a Campaign is
// created against it, after which the questionnaire is immutable.
type Questionnaire struct {
	ID          string
	Name        string
	Questions   []*Question
	ChangeCount int
	Locked      bool
}

// QuestionByLabel returns the question with the given label, or nil.
func (qn *Questionnaire) QuestionByLabel(label string) *Question {
	for _, q := range qn.Questions {
		if q.Label == label {
			return q
		}
	}
	return nil
}

// FirstQuestion returns the question with Index 0, or nil for an empty
// questionnaire (which the compiler never actually produces).
func (qn *Questionnaire) FirstQuestion() *Question {
	if len(qn.Questions) == 0 {
		return nil
	}
	return qn.Questions[0]
}

// NextInOrder returns the question immediately following q by Index, or
// nil if q is last.
func (qn *Questionnaire) NextInOrder(q *Question) *Question {
	if q.Index+1 >= len(qn.Questions) {
		return nil
	}
	return qn.Questions[q.Index+1]
}

// Touch bumps the change counter, invalidating the lazy completeness
// check of every QuestionnaireLocalization until each re-checks.
func (qn *Questionnaire) Touch() {
	qn.ChangeCount++
}
