package model

// AnswerBodyKind tags the variant of an AnswerBody. Variants mirror
// QuestionKind minus the kinds that can never be answered directly
// (FromTemplate answers reuse the underlying template body's kind;
// BeginLoop/EndLoop are never answered).
type AnswerBodyKind string

const (
	AnswerMessage        AnswerBodyKind = "message"
	AnswerInput          AnswerBodyKind = "input"
	AnswerSelect         AnswerBodyKind = "select"
	AnswerMultipleChoice AnswerBodyKind = "multiple_choice"
)

type AnswerBody interface {
	Kind() AnswerBodyKind
}

// MessageAnswerBody is the answer recorded when a respondent acknowledges
// a Message question; it carries no data of its own.
type MessageAnswerBody struct{}

func (MessageAnswerBody) Kind() AnswerBodyKind { return AnswerMessage }

type InputAnswerBody struct {
	Text    string
	Comment string
}

func (InputAnswerBody) Kind() AnswerBodyKind { return AnswerInput }

// Choice is one selected (or ranked) option. Index is the 0-based
// position of the option within the question's option list; Comment is
// the respondent's free text, present only if the chosen option's
// HasComment is set.
type Choice struct {
	OptionLocalizationID string
	Index                int
	Comment              string
}

type SelectAnswerBody struct {
	Choice  *Choice
	Comment string
}

func (SelectAnswerBody) Kind() AnswerBodyKind { return AnswerSelect }

// MultipleChoiceAnswerBody carries an ordered list of Choices: order
// matters for RankAtMost/RankExactly, is incidental otherwise.
type MultipleChoiceAnswerBody struct {
	Choices []*Choice
	Comment string
}

func (MultipleChoiceAnswerBody) Kind() AnswerBodyKind { return AnswerMultipleChoice }

// Answer is one respondent response, always against a concrete Question
// in the compiled graph; its localized rendering is resolved on demand
// against the interview's language rather than cached, since the
// underlying localization may itself be replaced between reads.
type Answer struct {
	ID           string
	Question     *Question
	IPAddress    string
	Elapsed      int64 // milliseconds since the previous entry.
	TotalElapsed int64 // milliseconds since interview start.
	Timestamp    int64 // unix epoch milliseconds.
	Geolocation  string
	Body         AnswerBody
}
