package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdesk/api/models"
	"chatdesk/api/store"
)

type ConversationHandlers struct {
	Stores *store.Stores
}

func NewConversationHandlers(stores *store.Stores) *ConversationHandlers {
	return &ConversationHandlers{Stores: stores}
}

// List returns a business's conversations, newest first, with lead contacts
// and message counts.
func (h *ConversationHandlers) List(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	summaries, err := h.Stores.Conversations.ListConversationSummaries(c.Request.Context(), business.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *ConversationHandlers) Messages(c *gin.Context) {
	ctx := c.Request.Context()
	conv, err := h.Stores.Conversations.GetOwnedConversation(ctx, c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	messages, err := h.Stores.Messages.ListMessages(ctx, conv.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ConversationHandlers) UpdateStatus(c *gin.Context) {
	var req models.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	conv, err := h.Stores.Conversations.UpdateConversationStatus(c.Request.Context(), c.Param("id"), currentUserID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}
