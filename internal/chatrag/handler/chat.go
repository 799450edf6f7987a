package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/JhonatanRC03/chat-rag/internal/pkg/code"
	"github.com/JhonatanRC03/chat-rag/internal/pkg/httputils"
	"github.com/JhonatanRC03/chat-rag/pkg/utils/json"
)

// chatRequest is the body of the chat endpoints.
type chatRequest struct {
	Message string        `json:"message"`
	History []chatMessage `json:"history"`
}

// streamEvent is a single SSE payload on the chat stream.
type streamEvent struct {
	Chunk string `json:"chunk,omitempty"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// ChatMessage handles POST /v1/chat/message, returning the whole answer.
func (h *Handler) ChatMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		httputils.WriteResponse(c, code.ErrMessageRequired, nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	result, err := h.chat.Chat(ctx, req.Message, toLLMMessages(req.History))
	if err != nil {
		logger.Errorw("chat failed", "error", err.Error())
		httputils.WriteResponse(c, code.ErrChatFailed.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, result)
}

// ChatStream handles POST /v1/chat/stream, streaming the answer as SSE
// events of the form `data: {"chunk":..,"done":..}`. A failure before the
// first chunk is a regular error response; a failure mid-stream terminates
// the stream with an error event.
func (h *Handler) ChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		httputils.WriteResponse(c, code.ErrMessageRequired, nil)
		return
	}

	streamed := false
	_, err := h.chat.ChatStream(c.Request.Context(), req.Message, toLLMMessages(req.History), func(content string) error {
		streamed = true
		return writeEvent(c, streamEvent{Chunk: content})
	})
	if err != nil {
		logger.Errorw("chat stream failed", "streamed", streamed, "error", err.Error())
		if !streamed {
			httputils.WriteResponse(c, code.ErrChatFailed.WithCause(err), nil)
			return
		}
		_ = writeEvent(c, streamEvent{Done: true, Error: "generation failed"})
		return
	}

	_ = writeEvent(c, streamEvent{Done: true})
}

// Health handles GET /v1/chat/health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	stats, err := h.chat.Stats(ctx)
	if err != nil {
		httputils.WriteResponse(c, code.ErrSearchFailed.WithCause(err), nil)
		return
	}
	stats["status"] = "ok"
	httputils.WriteResponse(c, nil, stats)
}

// writeEvent writes one SSE event. The stream headers are set lazily on the
// first write so a failure before any chunk still gets a JSON error response.
func writeEvent(c *gin.Context, event streamEvent) error {
	if !c.Writer.Written() {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
