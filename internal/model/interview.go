package model

// State is the Interview's lifecycle state machine: Initiated accepts
// only Start; Ongoing accepts Submit and Revise; Completed accepts
// neither and may only be read.
type State string

const (
	Initiated State = "initiated"
	Ongoing   State = "ongoing"
	Completed State = "completed"
)

// Interview owns its History and weakly references the
// QuestionnaireLocalization it was started with: if that localization is
// later removed, the interview keeps its Language but
// QuestionnaireLocalizationID may dangle, which is a valid state to be
// in, not an error, until the interview is next advanced.
type Interview struct {
	ID         string
	CampaignID string
	Campaign   *Campaign

	QuestionnaireLocalizationID string
	Language                    string

	State       State
	NextQuestion *Question
	History      []Entry

	StartTimestamp   int64
	StartIPAddress   string
	StartGeolocation string
	IntervieweeID    string
	InterviewerID    string
	InterviewerUser  string
}

// Live reports whether the interview is in a state that accepts Submit
// or Revise.
func (iv *Interview) Live() bool {
	return iv.State == Ongoing
}
