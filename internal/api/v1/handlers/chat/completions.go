package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rizzard/rizzard/internal/metrics"
	"github.com/rizzard/rizzard/internal/services/chat"
	"github.com/rizzard/rizzard/internal/services/chat/models"
	"github.com/rizzard/rizzard/internal/services/completion"
	"github.com/rizzard/rizzard/pkg/httpext"
	"github.com/rizzard/rizzard/pkg/sse"
	"github.com/rs/zerolog/log"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// HandleChat relays a streamed completion as text/event-stream frames.
// Errors before the first fragment are returned as JSON; errors after it are
// sent as an error event and the stream ends without the done sentinel.
func HandleChat(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Str("client_ip", r.RemoteAddr).Logger()

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Client sent malformed JSON request")
		metrics.ChatRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		logger.Warn().Err(err).Msg("Request validation failed")
		metrics.ChatRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	logger.Info().Int("message_count", len(req.Messages)).Msg("Starting chat stream")

	reply, err := chatService.StreamChat(r.Context(), req.Messages)
	if err != nil {
		metrics.ChatRequests.WithLabelValues(metrics.OutcomeSetup).Inc()

		var nc *completion.NotConfiguredError
		switch {
		case errors.As(err, &nc):
			logger.Error().Msg("Completion provider is not configured")
			httpext.JsonError(w, nc.Detail, http.StatusInternalServerError)
		case errors.Is(err, chat.ErrNoMessages):
			logger.Warn().Msg("Request has no messages with content")
			httpext.JsonError(w, "Messages must contain at least one non-empty message", http.StatusBadRequest)
		default:
			logger.Error().Err(err).Msg("Error setting up chat")
			httpext.JsonError(w, "Error setting up chat: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	defer reply.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	enc := sse.NewEncoder(w)
	fragments := 0
	for {
		text, err := reply.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if r.Context().Err() != nil {
				logger.Info().Int("fragments", fragments).Msg("Client went away during chat stream")
				metrics.ChatRequests.WithLabelValues(metrics.OutcomeCanceled).Inc()
				return
			}
			logger.Error().Err(err).Int("fragments", fragments).Msg("Error in stream generation")
			metrics.ChatRequests.WithLabelValues(metrics.OutcomeUpstream).Inc()
			if werr := enc.WriteError(err.Error()); werr != nil {
				logger.Debug().Err(werr).Msg("Failed to write error event")
			}
			return
		}

		if err := enc.WriteDelta(text); err != nil {
			logger.Info().Err(err).Int("fragments", fragments).Msg("Client went away during chat stream")
			metrics.ChatRequests.WithLabelValues(metrics.OutcomeCanceled).Inc()
			return
		}
		fragments++
		metrics.ChatFragments.Inc()
	}

	if err := enc.WriteDone(); err != nil {
		logger.Debug().Err(err).Msg("Failed to write done sentinel")
	}

	metrics.ChatRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	logger.Info().Int("fragments", fragments).Msg("Chat stream completed")
}
