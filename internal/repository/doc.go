// Package repository persists the questionnaire, localization, template
// and campaign document kinds in MongoDB and rehydrates the in-memory
// model graph from them on read. Question/Transition/Function/Option
// pointer graphs (including the BeginLoop<->EndLoop cycle) do not
// marshal directly, so each structural document is stored as its
// original compiler.Source* wire shape plus a little bookkeeping, and
// rebuilt through the same compiler the upload path uses: Pass A through
// E run again on load, deterministically, exactly as they did on write.
// Only label-stable references survive a round trip; Question.ID is not
// treated as durable identity anywhere outside a single compile.
package repository

import (
	"time"

	"github.com/metaspex/interviews/internal/compiler"
)

type templateQuestionCategoryDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type templateQuestionDoc struct {
	ID         string                          `bson:"_id"`
	CategoryID string                          `bson:"category_id"`
	Source     compiler.SourceTemplateQuestion `bson:"source"`
	CreatedAt  time.Time                       `bson:"created_at"`
}

type templateQuestionLocalizationDoc struct {
	ID                 string                                      `bson:"_id"`
	TemplateQuestionID string                                      `bson:"template_question_id"`
	Language           string                                      `bson:"language"`
	Source             compiler.SourceTemplateQuestionLocalization `bson:"source"`
	CreatedAt          time.Time                                   `bson:"created_at"`
}

type questionnaireDoc struct {
	ID          string                       `bson:"_id"`
	Name        string                       `bson:"name"`
	Source      compiler.SourceQuestionnaire `bson:"source"`
	ChangeCount int                          `bson:"change_count"`
	Locked      bool                         `bson:"locked"`
	CreatedAt   time.Time                    `bson:"created_at"`
	UpdatedAt   time.Time                    `bson:"updated_at"`
}

type questionnaireLocalizationDoc struct {
	ID              string `bson:"_id"`
	QuestionnaireID string `bson:"questionnaire_id"`
	Language        string `bson:"language"`
	// First is true for the localization built directly by compiler.Compile
	// (its content lives inside the Questionnaire's own Source, so Source
	// here is zero); false for one uploaded via CompileLocalization, whose
	// Source is round-tripped independently.
	First       bool                                     `bson:"first"`
	Source      compiler.SourceQuestionnaireLocalization `bson:"source,omitempty"`
	LastChecked int                                       `bson:"last_checked"`
	CreatedAt   time.Time                                `bson:"created_at"`
}

type campaignDoc struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	QuestionnaireID string    `bson:"questionnaire_id"`
	StartsAt        time.Time `bson:"starts_at"`
	EndsAt          time.Time `bson:"ends_at"`
	CreatedAt       time.Time `bson:"created_at"`
}

// entryDoc is the flattened form of one model.Entry. QuestionLabel
// resolves the entry back to a *model.Question within the interview's
// questionnaire; OperandAnswerID carries BeginLoopEntry's weak
// reference verbatim (it already is a label-independent Answer id).
type entryDoc struct {
	Kind            string       `bson:"kind"` // "answer", "begin_loop", "end_loop"
	QuestionLabel   string       `bson:"question_label"`
	Answer          *answerDoc   `bson:"answer,omitempty"`
	OperandAnswerID string       `bson:"operand_answer_id,omitempty"`
	Index           int          `bson:"index,omitempty"`
}

type choiceDoc struct {
	OptionLocalizationID string `bson:"option_localization_id"`
	Index                int    `bson:"index"`
	Comment              string `bson:"comment,omitempty"`
}

// answerDoc flattens model.Answer, tagging its AnswerBody union by kind
// the same way compiler.SourceQuestion tags QuestionBody.
type answerDoc struct {
	ID           string      `bson:"id"`
	BodyKind     string      `bson:"body_kind"`
	Text         string      `bson:"text,omitempty"`
	Comment      string      `bson:"comment,omitempty"`
	Choice       *choiceDoc  `bson:"choice,omitempty"`
	Choices      []choiceDoc `bson:"choices,omitempty"`
	IPAddress    string      `bson:"ip_address,omitempty"`
	Elapsed      int64       `bson:"elapsed"`
	TotalElapsed int64       `bson:"total_elapsed"`
	Timestamp    int64       `bson:"timestamp"`
	Geolocation  string      `bson:"geolocation,omitempty"`
}

type interviewDoc struct {
	ID                          string      `bson:"_id"`
	CampaignID                  string      `bson:"campaign_id"`
	QuestionnaireLocalizationID string      `bson:"questionnaire_localization_id"`
	Language                    string      `bson:"language"`
	State                       string      `bson:"state"`
	NextQuestionLabel           string      `bson:"next_question_label,omitempty"`
	History                     []entryDoc  `bson:"history"`
	StartTimestamp              int64       `bson:"start_timestamp"`
	StartIPAddress              string      `bson:"start_ip_address,omitempty"`
	StartGeolocation            string      `bson:"start_geolocation,omitempty"`
	IntervieweeID               string      `bson:"interviewee_id,omitempty"`
	InterviewerID               string      `bson:"interviewer_id,omitempty"`
	InterviewerUser             string      `bson:"interviewer_user,omitempty"`
	CreatedAt                   time.Time   `bson:"created_at"`
	UpdatedAt                   time.Time   `bson:"updated_at"`
}
