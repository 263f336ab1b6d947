package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"chatdesk/api/apperrors"
	"chatdesk/api/metrics"
	"chatdesk/api/models"
	"chatdesk/api/notify"
	"chatdesk/api/prompt"
	"chatdesk/api/store"
)

const maxTrackBatch = 100

// Completer produces the assistant reply for a conversation history.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []models.ChatMessage) (string, error)
}

// EventRecorder persists widget events. A nil EventRecorder disables event
// analytics.
type EventRecorder interface {
	InsertWidgetEvents(ctx context.Context, events []models.WidgetEvent) error
}

// ExchangeWriter stores a visitor message together with the assistant reply.
type ExchangeWriter interface {
	AppendExchange(ctx context.Context, conversationID, userContent, assistantContent string) error
}

// WidgetHandlers serves the public, unauthenticated widget endpoints.
type WidgetHandlers struct {
	Stores   *store.Stores
	Messages ExchangeWriter
	Gateway  Completer
	Events   EventRecorder
	Notifier notify.LeadNotifier
	now      func() time.Time
}

func NewWidgetHandlers(stores *store.Stores, gateway Completer, events EventRecorder, notifier notify.LeadNotifier) *WidgetHandlers {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &WidgetHandlers{
		Stores:   stores,
		Messages: stores.Messages,
		Gateway:  gateway,
		Events:   events,
		Notifier: notifier,
		now:      time.Now,
	}
}

// Chat answers a visitor message grounded on the business knowledge base.
func (h *WidgetHandlers) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := log.With().Str("business_id", req.BusinessID).Str("conversation_id", req.ConversationID).Logger()

	business, err := h.Stores.Businesses.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(outcomeOf(err)).Inc()
		respondError(c, err)
		return
	}
	items, err := h.Stores.Knowledge.ListKnowledge(ctx, business.ID)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(outcomeOf(err)).Inc()
		respondError(c, err)
		return
	}

	started := h.now()
	reply, err := h.Gateway.Complete(ctx, prompt.SystemPrompt(business, items), req.Messages)
	elapsed := h.now().Sub(started)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(outcomeOf(err)).Inc()
		logger.Warn().Err(err).Msg("Chat completion failed")
		respondError(c, err)
		return
	}

	question := req.Messages[len(req.Messages)-1].Content
	if req.ConversationID != "" {
		if err := h.Messages.AppendExchange(ctx, req.ConversationID, question, reply); err != nil {
			logger.Error().Err(err).Msg("Failed to store chat messages")
		}
	}

	h.record(ctx, models.WidgetEvent{
		EventType:      models.EventChatMessage,
		BusinessID:     business.ID,
		VisitorID:      req.VisitorID,
		ConversationID: req.ConversationID,
		Question:       question,
		ResponseMs:     elapsed.Milliseconds(),
		UserAgent:      c.Request.UserAgent(),
		IPAddress:      c.ClientIP(),
	})

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, models.ChatResponse{Message: reply})
}

// CaptureLead stores visitor contact details against a conversation,
// creating the conversation when the widget has none yet.
func (h *WidgetHandlers) CaptureLead(c *gin.Context) {
	var req models.CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := log.With().Str("business_id", req.BusinessID).Logger()

	conversation := h.findOrCreateConversation(ctx, req)
	if conversation == nil {
		respondError(c, apperrors.New(apperrors.KindCreationFailure, "Failed to create/find conversation"))
		return
	}

	lead, err := h.Stores.Leads.CreateLead(ctx, req.BusinessID, conversation.ID, models.LeadContact{
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.LeadsCapturedTotal.Inc()

	h.notifyOwner(ctx, req.BusinessID, lead)

	if err := h.Stores.Analytics.IncrementLeadsCaptured(ctx, req.BusinessID, h.now()); err != nil {
		logger.Error().Err(err).Str("lead_id", lead.ID).Msg("Failed to update daily analytics")
	}

	h.record(ctx, models.WidgetEvent{
		EventType:      models.EventLeadCaptured,
		BusinessID:     req.BusinessID,
		VisitorID:      req.VisitorID,
		ConversationID: conversation.ID,
		UserAgent:      c.Request.UserAgent(),
		IPAddress:      c.ClientIP(),
	})

	c.JSON(http.StatusOK, models.CaptureLeadResponse{
		Success:        true,
		ConversationID: conversation.ID,
		LeadID:         lead.ID,
	})
}

func (h *WidgetHandlers) findOrCreateConversation(ctx context.Context, req models.CaptureLeadRequest) *models.Conversation {
	if req.ConversationID != "" {
		conv, err := h.Stores.Conversations.GetConversation(ctx, req.ConversationID)
		if err != nil {
			log.Warn().Err(err).Str("conversation_id", req.ConversationID).Msg("Lead capture could not load conversation")
			return nil
		}
		if conv.BusinessID != req.BusinessID {
			log.Warn().
				Str("conversation_id", conv.ID).
				Str("conversation_business_id", conv.BusinessID).
				Str("business_id", req.BusinessID).
				Msg("Lead captured against a conversation of another business")
		}
		return conv
	}

	conv, err := h.Stores.Conversations.CreateConversation(ctx, req.BusinessID, req.VisitorID)
	if err != nil {
		log.Error().Err(err).Str("business_id", req.BusinessID).Msg("Lead capture could not create conversation")
		return nil
	}
	return conv
}

func (h *WidgetHandlers) notifyOwner(ctx context.Context, businessID string, lead *models.Lead) {
	contact, err := h.Stores.Businesses.GetOwnerContact(ctx, businessID)
	if err != nil {
		log.Warn().Err(err).Str("business_id", businessID).Msg("Could not look up business owner")
		return
	}
	if contact.OwnerEmail == nil || *contact.OwnerEmail == "" {
		return
	}
	if err := h.Notifier.NotifyLead(ctx, *contact.OwnerEmail, contact.BusinessName, lead); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID).Msg("Failed to notify owner about lead")
	}
}

// Config returns the public widget settings and greeting for a business.
func (h *WidgetHandlers) Config(c *gin.Context) {
	business, err := h.Stores.Businesses.GetBusiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.WidgetConfig{
		ID:           business.ID,
		Name:         business.Name,
		Tone:         business.Tone,
		PrimaryColor: business.PrimaryColor,
		LogoURL:      business.LogoURL,
		WidgetActive: business.WidgetActive,
		Greeting:     prompt.Greeting(business),
	})
}

// Track records a batch of widget events sent by the embedded script.
func (h *WidgetHandlers) Track(c *gin.Context) {
	var incoming []models.WidgetEvent
	if err := c.ShouldBindJSON(&incoming); err != nil {
		log.Debug().Err(err).Msg("Error binding incoming widget events")
		bindError(c, err)
		return
	}
	if len(incoming) > maxTrackBatch {
		respondError(c, apperrors.Validation("Too many events in one batch"))
		return
	}
	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}
	if h.Events == nil {
		respondError(c, apperrors.New(apperrors.KindUnavailable, "Event analytics is not configured"))
		return
	}

	now := h.now().UTC()
	events := make([]models.WidgetEvent, 0, len(incoming))
	for _, event := range incoming {
		if !models.IsClientEventType(event.EventType) {
			respondError(c, apperrors.Validation("Unsupported event type: "+event.EventType))
			return
		}
		// chat_message and lead_captured are recorded server side only.
		event.Question = ""
		event.ResponseMs = 0
		event.EventID = uuid.NewString()
		event.IPAddress = c.ClientIP()
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}
		if event.UserAgent == "" {
			event.UserAgent = c.Request.UserAgent()
		}
		events = append(events, event)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertWidgetEvents(ctx, events); err != nil {
		respondError(c, apperrors.Persistence(err, "Failed to record widget events"))
		return
	}
	c.Status(http.StatusOK)
}

// record writes one server-side widget event. Failures are logged only.
func (h *WidgetHandlers) record(ctx context.Context, event models.WidgetEvent) {
	if h.Events == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.Timestamp = h.now().UTC()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Events.InsertWidgetEvents(ctx, []models.WidgetEvent{event}); err != nil {
		log.Warn().Err(err).Str("event_type", event.EventType).Msg("Failed to record widget event")
	}
}

func outcomeOf(err error) string {
	if kind := apperrors.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
