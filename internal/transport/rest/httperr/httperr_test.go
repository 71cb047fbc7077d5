package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaspex/interviews/internal/model"
)

func TestCode_ExtractsFromEachDomainErrorType(t *testing.T) {
	assert.Equal(t, "qqnonexist", Code(model.ErrQuestionnaireDoesNotExist))
	assert.Equal(t, "qlabdup", Code(model.ErrQuestionLabelIsADuplicate("dup")))
	assert.Equal(t, "", Code(errors.New("not a domain error")))
}

func TestStatusFor_NotFoundCodes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(model.ErrQuestionnaireDoesNotExist))
	assert.Equal(t, http.StatusNotFound, StatusFor(model.ErrCampaignDoesNotExist))
}

func TestStatusFor_ConflictCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(model.ErrQuestionnaireIsLocked))
	assert.Equal(t, http.StatusConflict, StatusFor(model.ErrCampaignExpired))
	assert.Equal(t, http.StatusConflict, StatusFor(model.ErrInterviewIsAlreadyStarted))
}

func TestStatusFor_InternalErrorCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(model.ErrInternal))
}

func TestStatusFor_UnknownDomainErrorIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestStatusFor_OtherDomainCodesAreBadRequest(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(model.ErrQuestionLabelIsADuplicate("dup")))
}

func TestWrite_EncodesCodeAndMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, model.ErrCampaignDoesNotExist)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cmiss", body["error"])
	assert.Equal(t, "Campaign does not exist.", body["message"])
}

func TestWrite_NonDomainErrorUsesGenericCode(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("something unexpected"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["error"])
	assert.Equal(t, "something unexpected", body["message"])
}
