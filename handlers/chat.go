package handlers

import (
	"net/http"
	"strings"
	"vayro/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatRequest struct {
	ConvoID string `json:"convoId"`
	Message string `json:"message"`
}

const (
	chatTemperature = 0.8
	chatFallback    = "Sorry, I didn't catch that."
)

// ViraChatHandler continues a conversation with the travel companion. A
// request without convoId starts a new conversation and returns its id.
func ViraChatHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message required"})
		return
	}
	if req.ConvoID == "" {
		req.ConvoID = uuid.New().String()
	}

	store := services.GetConversationStore()
	store.Append(req.ConvoID, services.ChatMessage{Role: "user", Content: req.Message})

	messages := append([]services.ChatMessage{{Role: "system", Content: services.ViraSystemPrompt}},
		store.History(req.ConvoID)...)

	reply, err := services.GetAIClient().Complete(c.Request.Context(), messages, services.Temperature(chatTemperature))
	if err != nil {
		upstreamFailure(c, err, "Chat failed")
		return
	}
	if reply == "" {
		reply = chatFallback
	}
	store.Append(req.ConvoID, services.ChatMessage{Role: "assistant", Content: reply})

	c.JSON(http.StatusOK, gin.H{"reply": reply, "convoId": req.ConvoID})
}
