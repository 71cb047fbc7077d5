package auth

import "github.com/golang-jwt/jwt/v5"

// AdminClaims authenticate a questionnaire/campaign administrator: the
// role that can create Questionnaires, TemplateQuestions and Campaigns.
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// InterviewerClaims are campaign-scoped: an interviewer token is only
// ever minted against one Campaign, mirroring how an Interview itself
// is started against exactly one Campaign.
type InterviewerClaims struct {
	CampaignID     string `json:"campaignId"`
	InterviewerID  string `json:"interviewerId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful administrator login.
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}
