package model

// EntryKind tags the variant of a history Entry.
type EntryKind string

const (
	EntryAnswer    EntryKind = "answer"
	EntryBeginLoop EntryKind = "begin_loop"
	EntryEndLoop   EntryKind = "end_loop"
)

// Entry is one element of an Interview's history.
type Entry interface {
	Kind() EntryKind
	// Question returns the question this entry is about: the answered
	// question for an AnswerEntry, the BeginLoop/EndLoop question
	// otherwise. Never nil.
	Question() *Question
}

type AnswerEntry struct {
	Answer *Answer
}

func (e *AnswerEntry) Kind() EntryKind   { return EntryAnswer }
func (e *AnswerEntry) Question() *Question { return e.Answer.Question }

// BeginLoopEntry records one pass through a loop's BeginLoop. Index is
// the loop-frame index this entry corresponds to (0-based, matching the
// operand array). OperandAnswerID is a weak reference (the id of the
// Answer entry elsewhere in history that produced the loop's operand),
// so that grafting a revised answer over it never needs to cascade a
// delete into still-valid BeginLoopEntries.
type BeginLoopEntry struct {
	BeginLoop       *Question
	OperandAnswerID string
	Index           int
}

func (e *BeginLoopEntry) Kind() EntryKind     { return EntryBeginLoop }
func (e *BeginLoopEntry) Question() *Question { return e.BeginLoop }

type EndLoopEntry struct {
	EndLoop *Question
}

func (e *EndLoopEntry) Kind() EntryKind     { return EntryEndLoop }
func (e *EndLoopEntry) Question() *Question { return e.EndLoop }
