package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/metaspex/interviews/internal/model"
)

// InterviewRepository persists Interviews. History entries are stored
// by question label and rehydrated against the Campaign's Questionnaire
// loaded for the same call, so every Question pointer an Interview's
// History or NextQuestion holds after Load is shared with the campaign
// the caller is already working against.
type InterviewRepository struct {
	store     *Store
	campaigns *CampaignRepository
}

func NewInterviewRepository(store *Store, campaigns *CampaignRepository) *InterviewRepository {
	return &InterviewRepository{store: store, campaigns: campaigns}
}

func (r *InterviewRepository) Create(ctx context.Context, iv *model.Interview) error {
	iv.ID = uuid.NewString()
	now := time.Now()
	doc := toInterviewDoc(iv)
	doc.CreatedAt, doc.UpdatedAt = now, now
	_, err := r.store.Interviews.InsertOne(ctx, doc)
	return err
}

func (r *InterviewRepository) Save(ctx context.Context, iv *model.Interview) error {
	doc := toInterviewDoc(iv)
	doc.UpdatedAt = time.Now()
	_, err := r.store.Interviews.ReplaceOne(ctx, byID(iv.ID), doc)
	return err
}

// Load returns the Interview together with the Campaign (and its
// Questionnaire) it belongs to.
func (r *InterviewRepository) Load(ctx context.Context, id string) (*model.Interview, *model.Campaign, error) {
	var doc interviewDoc
	if err := r.store.Interviews.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, model.ErrInterviewDoesNotExist
		}
		return nil, nil, err
	}
	campaign, err := r.campaigns.Load(ctx, doc.CampaignID)
	if err != nil {
		return nil, nil, err
	}
	iv, err := fromInterviewDoc(&doc, campaign)
	if err != nil {
		return nil, nil, err
	}
	return iv, campaign, nil
}

func toInterviewDoc(iv *model.Interview) interviewDoc {
	doc := interviewDoc{
		ID:                          iv.ID,
		CampaignID:                  iv.CampaignID,
		QuestionnaireLocalizationID: iv.QuestionnaireLocalizationID,
		Language:                    iv.Language,
		State:                       string(iv.State),
		StartTimestamp:              iv.StartTimestamp,
		StartIPAddress:              iv.StartIPAddress,
		StartGeolocation:            iv.StartGeolocation,
		IntervieweeID:               iv.IntervieweeID,
		InterviewerID:               iv.InterviewerID,
		InterviewerUser:             iv.InterviewerUser,
	}
	if iv.NextQuestion != nil {
		doc.NextQuestionLabel = iv.NextQuestion.Label
	}
	for _, e := range iv.History {
		doc.History = append(doc.History, toEntryDoc(e))
	}
	return doc
}

func toEntryDoc(e model.Entry) entryDoc {
	switch ent := e.(type) {
	case *model.AnswerEntry:
		return entryDoc{Kind: "answer", QuestionLabel: ent.Answer.Question.Label, Answer: toAnswerDoc(ent.Answer)}
	case *model.BeginLoopEntry:
		return entryDoc{Kind: "begin_loop", QuestionLabel: ent.BeginLoop.Label, OperandAnswerID: ent.OperandAnswerID, Index: ent.Index}
	case *model.EndLoopEntry:
		return entryDoc{Kind: "end_loop", QuestionLabel: ent.EndLoop.Label}
	default:
		return entryDoc{}
	}
}

func toAnswerDoc(a *model.Answer) *answerDoc {
	doc := &answerDoc{
		ID:           a.ID,
		IPAddress:    a.IPAddress,
		Elapsed:      a.Elapsed,
		TotalElapsed: a.TotalElapsed,
		Timestamp:    a.Timestamp,
		Geolocation:  a.Geolocation,
	}
	switch b := a.Body.(type) {
	case model.MessageAnswerBody:
		doc.BodyKind = "message"
	case model.InputAnswerBody:
		doc.BodyKind = "input"
		doc.Text, doc.Comment = b.Text, b.Comment
	case model.SelectAnswerBody:
		doc.BodyKind = "select"
		doc.Comment = b.Comment
		if b.Choice != nil {
			c := toChoiceDoc(b.Choice)
			doc.Choice = &c
		}
	case model.MultipleChoiceAnswerBody:
		doc.BodyKind = "multiple_choice"
		doc.Comment = b.Comment
		for _, c := range b.Choices {
			doc.Choices = append(doc.Choices, toChoiceDoc(c))
		}
	}
	return doc
}

func toChoiceDoc(c *model.Choice) choiceDoc {
	return choiceDoc{OptionLocalizationID: c.OptionLocalizationID, Index: c.Index, Comment: c.Comment}
}

func fromInterviewDoc(doc *interviewDoc, campaign *model.Campaign) (*model.Interview, error) {
	qn := campaign.Questionnaire
	iv := &model.Interview{
		ID:                          doc.ID,
		CampaignID:                  doc.CampaignID,
		Campaign:                    campaign,
		QuestionnaireLocalizationID: doc.QuestionnaireLocalizationID,
		Language:                    doc.Language,
		State:                       model.State(doc.State),
		StartTimestamp:              doc.StartTimestamp,
		StartIPAddress:              doc.StartIPAddress,
		StartGeolocation:            doc.StartGeolocation,
		IntervieweeID:               doc.IntervieweeID,
		InterviewerID:               doc.InterviewerID,
		InterviewerUser:             doc.InterviewerUser,
	}
	if doc.NextQuestionLabel != "" {
		iv.NextQuestion = qn.QuestionByLabel(doc.NextQuestionLabel)
	}
	for _, ed := range doc.History {
		e, err := fromEntryDoc(&ed, qn)
		if err != nil {
			return nil, err
		}
		iv.History = append(iv.History, e)
	}
	return iv, nil
}

func fromEntryDoc(ed *entryDoc, qn *model.Questionnaire) (model.Entry, error) {
	q := qn.QuestionByLabel(ed.QuestionLabel)
	if q == nil {
		return nil, model.ErrInternal
	}
	switch ed.Kind {
	case "answer":
		a, err := fromAnswerDoc(ed.Answer, q)
		if err != nil {
			return nil, err
		}
		return &model.AnswerEntry{Answer: a}, nil
	case "begin_loop":
		return &model.BeginLoopEntry{BeginLoop: q, OperandAnswerID: ed.OperandAnswerID, Index: ed.Index}, nil
	case "end_loop":
		return &model.EndLoopEntry{EndLoop: q}, nil
	default:
		return nil, model.ErrInternal
	}
}

func fromAnswerDoc(doc *answerDoc, q *model.Question) (*model.Answer, error) {
	a := &model.Answer{
		ID:           doc.ID,
		Question:     q,
		IPAddress:    doc.IPAddress,
		Elapsed:      doc.Elapsed,
		TotalElapsed: doc.TotalElapsed,
		Timestamp:    doc.Timestamp,
		Geolocation:  doc.Geolocation,
	}
	switch doc.BodyKind {
	case "message":
		a.Body = model.MessageAnswerBody{}
	case "input":
		a.Body = model.InputAnswerBody{Text: doc.Text, Comment: doc.Comment}
	case "select":
		var c *model.Choice
		if doc.Choice != nil {
			c = fromChoiceDoc(doc.Choice)
		}
		a.Body = model.SelectAnswerBody{Choice: c, Comment: doc.Comment}
	case "multiple_choice":
		choices := make([]*model.Choice, 0, len(doc.Choices))
		for i := range doc.Choices {
			choices = append(choices, fromChoiceDoc(&doc.Choices[i]))
		}
		a.Body = model.MultipleChoiceAnswerBody{Choices: choices, Comment: doc.Comment}
	default:
		return nil, model.ErrInternal
	}
	return a, nil
}

func fromChoiceDoc(doc *choiceDoc) *model.Choice {
	return &model.Choice{OptionLocalizationID: doc.OptionLocalizationID, Index: doc.Index, Comment: doc.Comment}
}
