package model

import "time"

// Campaign binds a (now-locked) Questionnaire to an active window during
// which Interviews may be started against it.
type Campaign struct {
	ID              string
	Name            string
	QuestionnaireID string
	Questionnaire   *Questionnaire
	StartsAt        time.Time
	EndsAt          time.Time
}

// Active reports whether now falls within the campaign's window.
func (c *Campaign) Active(now time.Time) bool {
	return !now.Before(c.StartsAt) && now.Before(c.EndsAt)
}

// Expired reports whether now is past the campaign's end.
func (c *Campaign) Expired(now time.Time) bool {
	return !now.Before(c.EndsAt)
}

// NotYetActive reports whether now precedes the campaign's start.
func (c *Campaign) NotYetActive(now time.Time) bool {
	return now.Before(c.StartsAt)
}
