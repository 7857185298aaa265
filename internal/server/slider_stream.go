package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/settings"
	"github.com/aristath/riskalloc/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Frame types sent to slider clients
const (
	FrameState = "state"
	FrameError = "error"
)

const sliderWriteTimeout = 5 * time.Second

// SliderRequest is a client frame. Lambda moves the session's slider;
// Persist stores the session's value as the new default.
type SliderRequest struct {
	Lambda  *float64 `json:"lambda,omitempty" msgpack:"lambda,omitempty"`
	Persist bool     `json:"persist,omitempty" msgpack:"persist,omitempty"`
}

// SliderFrame is a server frame. State carries the view for the session's
// current value; Error leaves the session unchanged.
type SliderFrame struct {
	Type      string                   `json:"type" msgpack:"type"`
	SessionID string                   `json:"session_id" msgpack:"session_id"`
	Lambda    float64                  `json:"lambda" msgpack:"lambda"`
	Persisted bool                     `json:"persisted,omitempty" msgpack:"persisted,omitempty"`
	View      *services.AllocationView `json:"view,omitempty" msgpack:"view,omitempty"`
	Error     string                   `json:"error,omitempty" msgpack:"error,omitempty"`
}

// SliderStreamHandler serves one websocket session per connection. Each
// session tracks its own risk aversion starting from the stored value.
type SliderStreamHandler struct {
	views    *services.AllocationViewService
	settings *settings.Service
	log      zerolog.Logger
}

// NewSliderStreamHandler creates a new slider stream handler.
func NewSliderStreamHandler(views *services.AllocationViewService, settingsService *settings.Service, log zerolog.Logger) *SliderStreamHandler {
	return &SliderStreamHandler{
		views:    views,
		settings: settingsService,
		log:      log.With().Str("component", "slider_stream").Logger(),
	}
}

type sliderSession struct {
	id      string
	lambda  float64
	binary  bool
	conn    *websocket.Conn
	handler *SliderStreamHandler
	log     zerolog.Logger
}

// ServeHTTP handles GET /api/ws/slider. ?encoding=msgpack switches the
// session to binary MessagePack frames.
func (h *SliderStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lambda, err := h.settings.GetRiskAversion()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read stored risk aversion")
		http.Error(w, "Failed to read risk aversion", http.StatusInternalServerError)
		return
	}

	// Server read/write timeouts would otherwise end the session early
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("Could not clear read deadline")
	}
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("Could not clear write deadline")
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	id := uuid.New().String()
	session := &sliderSession{
		id:      id,
		lambda:  lambda,
		binary:  r.URL.Query().Get("encoding") == "msgpack",
		conn:    conn,
		handler: h,
		log:     h.log.With().Str("session_id", id).Logger(),
	}

	session.log.Info().Float64("lambda", lambda).Msg("Slider session opened")
	err = session.run(r.Context())

	status := websocket.CloseStatus(err)
	switch {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		session.log.Info().Msg("Slider session closed")
	case r.Context().Err() != nil:
		session.log.Debug().Msg("Slider session cancelled")
	default:
		session.log.Warn().Err(err).Msg("Slider session ended")
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *sliderSession) run(ctx context.Context) error {
	if err := s.sendState(ctx, false); err != nil {
		return err
	}

	for {
		msgType, payload, err := s.conn.Read(ctx)
		if err != nil {
			return err
		}

		var req SliderRequest
		if err := decodeSliderRequest(msgType, payload, &req); err != nil {
			if err := s.sendError(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}

		if err := s.apply(ctx, req); err != nil {
			return err
		}
	}
}

// apply handles one request. Only write failures are returned; rejected
// requests produce an error frame.
func (s *sliderSession) apply(ctx context.Context, req SliderRequest) error {
	if req.Lambda == nil && !req.Persist {
		return s.sendError(ctx, "lambda is required")
	}

	if req.Lambda != nil {
		if err := s.handler.settings.Range().Check(*req.Lambda); err != nil {
			return s.sendError(ctx, err.Error())
		}
		s.lambda = *req.Lambda
	}

	if req.Persist {
		stored, err := s.handler.settings.SetRiskAversion(s.lambda)
		if err != nil {
			s.log.Error().Err(err).Float64("lambda", s.lambda).Msg("Failed to persist risk aversion")
			return s.sendError(ctx, "failed to persist risk aversion")
		}
		s.lambda = stored
	}

	return s.sendState(ctx, req.Persist)
}

func (s *sliderSession) sendState(ctx context.Context, persisted bool) error {
	view, err := s.handler.views.Build(s.lambda)
	if err != nil {
		if errors.Is(err, allocation.ErrInvalidParameter) {
			return s.sendError(ctx, err.Error())
		}
		s.log.Error().Err(err).Float64("lambda", s.lambda).Msg("Failed to build allocation view")
		return s.sendError(ctx, "failed to compute allocation")
	}

	return s.write(ctx, SliderFrame{
		Type:      FrameState,
		SessionID: s.id,
		Lambda:    s.lambda,
		Persisted: persisted,
		View:      &view,
	})
}

func (s *sliderSession) sendError(ctx context.Context, message string) error {
	s.log.Debug().Str("error", message).Msg("Rejected slider request")
	return s.write(ctx, SliderFrame{
		Type:      FrameError,
		SessionID: s.id,
		Lambda:    s.lambda,
		Error:     message,
	})
}

func (s *sliderSession) write(ctx context.Context, frame SliderFrame) error {
	ctx, cancel := context.WithTimeout(ctx, sliderWriteTimeout)
	defer cancel()

	if !s.binary {
		return wsjson.Write(ctx, s.conn, frame)
	}

	payload, err := msgpack.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return s.conn.Write(ctx, websocket.MessageBinary, payload)
}

// decodeSliderRequest accepts JSON text frames and MessagePack binary frames.
func decodeSliderRequest(msgType websocket.MessageType, payload []byte, req *SliderRequest) error {
	var err error
	if msgType == websocket.MessageBinary {
		err = msgpack.Unmarshal(payload, req)
	} else {
		err = json.Unmarshal(payload, req)
	}
	if err != nil {
		return fmt.Errorf("malformed request: %w", err)
	}
	return nil
}
