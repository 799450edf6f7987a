// Package router wires the chat-rag HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/version"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/handler"
)

// Register registers all routes on the engine.
func Register(engine *gin.Engine, h *handler.Handler) {
	engine.GET("/healthz", h.Healthz)

	engine.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	})

	v1 := engine.Group("/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.POST("/upload-and-process", h.UploadAndProcess)
			documents.POST("/search", h.SearchDocuments)
			documents.GET("", h.ListDocuments)
			documents.GET("/:id", h.GetDocument)
			documents.DELETE("/:id", h.DeleteDocument)
		}

		chat := v1.Group("/chat")
		{
			chat.POST("/stream", h.ChatStream)
			chat.POST("/message", h.ChatMessage)
			chat.GET("/health", h.Health)
		}
	}

	logger.Info("HTTP routes registered")
}
