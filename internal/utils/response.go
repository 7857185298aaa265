package utils

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack is served when the client lists it in Accept.
const ContentTypeMsgpack = "application/msgpack"

// Envelope is the response body shape shared by all API endpoints.
type Envelope struct {
	Data     interface{} `json:"data" msgpack:"data"`
	Metadata Metadata    `json:"metadata" msgpack:"metadata"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp string `json:"timestamp" msgpack:"timestamp"`
}

// ErrorBody is the response body for failed requests.
type ErrorBody struct {
	Error string `json:"error" msgpack:"error"`
}

// WantsMsgpack reports whether the request prefers MessagePack over JSON.
func WantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mediaType == ContentTypeMsgpack || mediaType == "application/x-msgpack" {
			return true
		}
	}
	return false
}

// WriteData wraps data in an Envelope and writes it in the negotiated encoding.
func WriteData(w http.ResponseWriter, r *http.Request, status int, data interface{}, log zerolog.Logger) {
	write(w, r, status, Envelope{
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().Format(time.RFC3339)},
	}, log)
}

// WriteError writes {"error": message} in the negotiated encoding.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string, log zerolog.Logger) {
	write(w, r, status, ErrorBody{Error: message}, log)
}

func write(w http.ResponseWriter, r *http.Request, status int, body interface{}, log zerolog.Logger) {
	if WantsMsgpack(r) {
		payload, err := msgpack.Marshal(body)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode MessagePack response")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(status)
		if _, err := w.Write(payload); err != nil {
			log.Debug().Err(err).Msg("Failed to write response")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
