package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("ADMIN_USERNAME", "alice")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("JWT_SECRET", "test-secret")
	return New()
}

func TestLogin_Success(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Login("alice", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, len(resp.AdminID) > len("admin_"))
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	s := newTestService(t)
	_, err := s.Login("alice", "wrong")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestLogin_UnknownUsernameRejected(t *testing.T) {
	s := newTestService(t)
	_, err := s.Login("mallory", "hunter2")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestValidateAdminToken_RoundTrip(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Login("alice", "hunter2")
	require.NoError(t, err)

	claims, err := s.ValidateAdminToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AdminID, claims.AdminID)
}

func TestValidateAdminToken_RejectsGarbage(t *testing.T) {
	s := newTestService(t)
	_, err := s.ValidateAdminToken("not-a-jwt")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateAdminToken_RejectsTokenFromDifferentSecret(t *testing.T) {
	s1 := newTestService(t)
	resp, err := s1.Login("alice", "hunter2")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "a-different-secret")
	s2 := New()
	_, err = s2.ValidateAdminToken(resp.Token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestIssueInterviewerToken_RoundTrip(t *testing.T) {
	s := newTestService(t)
	token, err := s.IssueInterviewerToken("campaign-1", "interviewer-1")
	require.NoError(t, err)

	claims, err := s.ValidateInterviewerToken(token)
	require.NoError(t, err)
	assert.Equal(t, "campaign-1", claims.CampaignID)
	assert.Equal(t, "interviewer-1", claims.InterviewerID)
}

