package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-session error.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// sessionResponse keeps the capitalised keys the session endpoints have
// always answered with.
type sessionResponse struct {
	Status string `json:"Status,omitempty"`
	Error  string `json:"Error,omitempty"`
	Name   string `json:"name,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	Status         string `json:"status"`
	ID             string `json:"id"`
	SequenceNumber int    `json:"numarContestatie,omitempty"`
	Message        string `json:"message"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Status: "error", Message: message})
}

// decodeRequest fills v from a JSON body or, for any other content type, from
// the url-encoded form.
func decodeRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return fmt.Errorf("decode json body: %w", err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	if err := decoder.Decode(v, r.PostForm); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}

	return nil
}

// decodeAndValidate answers 400 itself and returns false when the body
// cannot be decoded or fails validation. message overrides the generic
// validation message unless a failure sits inside a list element.
func (s *Service) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any, message string) bool {
	if err := decodeRequest(r, v); err != nil {
		s.logger.WithError(err).Debug("invalid request body")
		s.writeError(w, http.StatusBadRequest, "Date invalide")
		return false
	}

	if err := s.validate.Struct(v); err != nil {
		if message == "" || inListElement(err) {
			message = validationMessage(err)
		}
		s.writeError(w, http.StatusBadRequest, message)
		return false
	}

	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Date invalide"
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe))
	}

	return "Câmpuri lipsă sau invalide: " + strings.Join(fields, ", ")
}

// fieldPath names list elements by position, e.g. membri[1].cnp.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if !strings.Contains(ns, "[") {
		return fe.Field()
	}

	_, path, _ := strings.Cut(ns, ".")
	return path
}

func inListElement(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}

	for _, fe := range verrs {
		if strings.Contains(fe.Namespace(), "[") {
			return true
		}
	}
	return false
}
