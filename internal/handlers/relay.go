package handlers

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"aidraw-backend/internal/metrics"
	"aidraw-backend/internal/middleware"
	"aidraw-backend/internal/models"
	"aidraw-backend/internal/services"
)

// relay forwards upstream text deltas to the client as a plain chunked body.
//
// The first delta is pulled before any header is written, so an upstream that
// fails immediately still gets a JSON error response. Once output has started,
// a failure aborts the connection: the chunked body is left unterminated and
// the client sees a read error rather than a short, apparently complete answer.
func (h *ChatHandler) relay(w http.ResponseWriter, r *http.Request, provider services.ChatProvider, messages []models.ChatMessage, cfg models.ProviderConfig, exempt bool) {
	name := provider.Name()
	logger := log.WithFields(log.Fields{
		"provider":   name,
		"request_id": r.Header.Get(middleware.RequestIDHeader),
	})

	stream, err := provider.Stream(r.Context(), messages, cfg)
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues(name, metrics.ModeStream, metrics.OutcomeError).Inc()
		handleServiceError(w, r, err)
		return
	}
	defer stream.Close()

	started := stream.Next()
	if !started {
		if err := stream.Err(); err != nil {
			metrics.UpstreamCalls.WithLabelValues(name, metrics.ModeStream, metrics.OutcomeError).Inc()
			handleServiceError(w, r, err)
			return
		}
	}

	header := w.Header()
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Cache-Control", "no-cache")
	header.Set("X-Accel-Buffering", "no")
	setQuotaHeader(w, exempt)
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	chunks := 0
	for ok := started; ok; ok = stream.Next() {
		if _, err := io.WriteString(w, stream.Current()); err != nil {
			// client went away; the request context cancels the upstream call
			logger.WithError(err).Info("client disconnected during stream")
			metrics.UpstreamCalls.WithLabelValues(name, metrics.ModeStream, metrics.OutcomeAborted).Inc()
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		chunks++
	}
	metrics.StreamedChunks.WithLabelValues(name).Add(float64(chunks))

	if err := stream.Err(); err != nil {
		var framing *services.FramingError
		if errors.As(err, &framing) {
			logger.WithError(err).Error("malformed upstream event, aborting stream")
		} else {
			logger.WithError(err).Errorf("upstream stream failed after %d chunks", chunks)
		}
		metrics.UpstreamCalls.WithLabelValues(name, metrics.ModeStream, metrics.OutcomeAborted).Inc()
		panic(http.ErrAbortHandler)
	}

	metrics.UpstreamCalls.WithLabelValues(name, metrics.ModeStream, metrics.OutcomeOK).Inc()
	logger.WithField("chunks", chunks).Debug("stream completed")
}
