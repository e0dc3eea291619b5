package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var messageTemplate = template.Must(ParseTemplate("message.html"))

// MessagePageData is the template model for message.html
type MessagePageData struct {
	AppName string
	Title   string
	Message string
}

// renderMessage writes a plain page carrying a single user-facing message.
func (s *Server) renderMessage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := MessagePageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Message: message,
	}
	if err := messageTemplate.Execute(w, data); err != nil {
		log.Err(err).Msg("render message page")
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("encode json response")
	}
}

func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
