package handlers

import (
	"fmt"
	"image/color"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
	"chatdesk/api/store"
)

const (
	qrSize        = 300
	overviewDays  = 30
	embedTemplate = `<script src="%s" data-site="%s"></script>`
)

// qrForeground is the brand emerald #10b981.
var qrForeground = color.RGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}

// BusinessHandlers serves the owner dashboard for businesses, sharing and
// the account overview.
type BusinessHandlers struct {
	Stores          *store.Stores
	PublicBaseURL   string
	WidgetScriptURL string
	now             func() time.Time
}

func NewBusinessHandlers(stores *store.Stores, publicBaseURL, widgetScriptURL string) *BusinessHandlers {
	return &BusinessHandlers{
		Stores:          stores,
		PublicBaseURL:   publicBaseURL,
		WidgetScriptURL: widgetScriptURL,
		now:             time.Now,
	}
}

// Create finishes onboarding: the business and its starter questions are
// written together.
func (h *BusinessHandlers) Create(c *gin.Context) {
	var req models.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	business, err := h.Stores.Businesses.CreateBusiness(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("business_id", business.ID).Str("user_id", business.UserID).Msg("Business created")
	c.JSON(http.StatusCreated, business)
}

func (h *BusinessHandlers) List(c *gin.Context) {
	businesses, err := h.Stores.Businesses.ListBusinesses(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, businesses)
}

func (h *BusinessHandlers) Get(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandlers) Update(c *gin.Context) {
	var req models.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	business, err := h.Stores.Businesses.UpdateBusiness(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandlers) Share(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.ShareInfo{
		ChatURL:   h.chatURL(business.ID),
		EmbedCode: fmt.Sprintf(embedTemplate, h.WidgetScriptURL, business.ID),
	})
}

// QRCode renders the public chat link as a PNG.
func (h *BusinessHandlers) QRCode(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}

	code, err := qrcode.New(h.chatURL(business.ID), qrcode.Medium)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindUpstream, err, "Failed to generate QR code"))
		return
	}
	code.ForegroundColor = qrForeground
	code.BackgroundColor = color.White

	png, err := code.PNG(qrSize)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindUpstream, err, "Failed to generate QR code"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s-qr.png"`, business.ID))
	c.Data(http.StatusOK, "image/png", png)
}

// Overview aggregates the owner's dashboard counters. The independent
// queries run concurrently.
func (h *BusinessHandlers) Overview(c *gin.Context) {
	userID := currentUserID(c)
	since := h.now().UTC().AddDate(0, 0, -overviewDays)

	var overview models.Overview
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		businesses, err := h.Stores.Businesses.ListBusinesses(ctx, userID)
		overview.Businesses = len(businesses)
		return err
	})
	g.Go(func() error {
		n, err := h.Stores.Conversations.CountConversations(ctx, userID)
		overview.Conversations = n
		return err
	})
	g.Go(func() error {
		n, err := h.Stores.Leads.CountLeads(ctx, userID)
		overview.Leads = n
		return err
	})
	g.Go(func() error {
		days, err := h.Stores.Analytics.RecentDays(ctx, userID, since)
		overview.RecentDays = days
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *BusinessHandlers) chatURL(businessID string) string {
	return h.PublicBaseURL + "/chat/" + businessID
}
