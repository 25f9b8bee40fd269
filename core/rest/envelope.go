package rest

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/bfp-echague/firetrack/core/logger"
)

// SuccessResponse is the uniform wire format for every successful handler
// outcome. The zero message defaults to "Success".
type SuccessResponse struct {
	Message  string      `json:"message"`
	MoreInfo interface{} `json:"moreInfo,omitempty"`
	status   int
}

// Success returns a 200 response carrying the passed payload.
func Success(moreInfo interface{}) *SuccessResponse {
	return &SuccessResponse{Message: "Success", MoreInfo: moreInfo, status: http.StatusOK}
}

// SuccessMessage returns a 200 response with a custom message.
func SuccessMessage(moreInfo interface{}, message string) *SuccessResponse {
	return &SuccessResponse{Message: message, MoreInfo: moreInfo, status: http.StatusOK}
}

// Write serializes the envelope exactly once and sets the status code.
// Handlers never write to the transport except through an envelope.
func (s *SuccessResponse) Write(w http.ResponseWriter) {
	writeJSON(w, s.status, s)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	jsonData, err := json.MarshalWithOption(body, json.DisableHTMLEscape())
	if err != nil {
		logger.Default().WithError(err).Error("cannot marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonData)
}
