// Package httperr maps a domain error (internal/model's Error,
// QuestionError, TransitionError, AnswerError, TemplateQuestionError) to
// an HTTP status and writes the {"error","message"} body every handler
// in internal/transport/rest/handler responds with on failure.
package httperr

import (
	"encoding/json"
	"net/http"

	"github.com/metaspex/interviews/internal/model"
)

var notFound = map[string]bool{
	"tqcmiss":    true,
	"tqmiss":     true,
	"tqmissl":    true,
	"qqnonexist": true,
	"qqlmiss":    true,
	"qqlengmiss": true,
	"cmiss":      true,
	"intmiss":    true,
	"aimiss":     true,
	"tqlmiss":    true,
}

var conflict = map[string]bool{
	"qqlocked": true,
	"cexp":     true,
	"cinact":   true,
	"intcompl": true,
	"intalst":  true,
	"intnotst": true,
	"tqexist":  true,
	"tqlaex":   true,
}

// Code extracts the stable short code from any of the domain error types,
// or "" if err is not one of them.
func Code(err error) string {
	switch e := err.(type) {
	case *model.Error:
		return e.Code
	case *model.QuestionError:
		return e.Code
	case *model.TransitionError:
		return e.Code
	case *model.AnswerError:
		return e.Code
	case *model.TemplateQuestionError:
		return e.Code
	default:
		return ""
	}
}

// StatusFor returns the HTTP status a domain error should surface as.
func StatusFor(err error) int {
	code := Code(err)
	switch {
	case code == "":
		return http.StatusInternalServerError
	case code == "ierr":
		return http.StatusInternalServerError
	case notFound[code]:
		return http.StatusNotFound
	case conflict[code]:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Write translates err into the response body every handler uses on
// failure: {"error": "<code>", "message": "<text>"}.
func Write(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := Code(err)
	if code == "" {
		code = "error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": err.Error()})
}
