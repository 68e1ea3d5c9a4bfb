package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/web3insight/go-insight-backend/internal/services"
)

// StreamCompletion godoc
// @ID          streamCompletion
// @Summary     Stream the resolution of a submitted query
// @Description Opens a Server-Sent Events stream for the query's answer.
// @Description Each event carries a JSON body with either a "content" field
// @Description (answer text) or an "error" field (terminal failure message).
// @Description Already-answered queries replay their stored answer as a
// @Description single event.
// @Tags        Completion
// @Produce     text/event-stream
// @Param       id path string true "Query ID (UUID)" format(uuid)
// @Success     200 {string} string "SSE stream"
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     404 {object} handlers.ErrorResponse "Query not found"
// @Router      /queries/{id}/completion [get]
func (h *Handlers) StreamCompletion(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query id must be a UUID")
		return
	}

	sub, err := h.resolver.Resolve(c.Request.Context(), id)
	if err != nil {
		if err == services.ErrQueryNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "query not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			// Disconnect tears down delivery only; resolution keeps
			// running so the answer is still persisted.
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			body, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("query_id", id).Msg("encode stream event")
				return
			}
			c.SSEvent("message", string(body))
			c.Writer.Flush()
		}
	}
}
