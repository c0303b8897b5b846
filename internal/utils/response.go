package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response body shape: a "status" field plus either a
// "message" or the requested payload.
type Envelope map[string]interface{}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes the payload fields plus status=success.
func WriteSuccess(w http.ResponseWriter, status int, fields Envelope) {
	body := Envelope{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// WriteMessage writes {"status":"success","message":...}.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{"status": "success", "message": message})
}

// WriteError writes {"status":"error","message":...}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{"status": "error", "message": message})
}
