package api

import (
	"f2fit/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientHandler serves the member section. The member is always the caller.
type ClientHandler struct {
	reports       service.ReportService
	classes       service.ClassService
	subscriptions service.SubscriptionService
	messages      service.MessageService
	log           *zap.Logger
}

func NewClientHandler(
	reports service.ReportService,
	classes service.ClassService,
	subscriptions service.SubscriptionService,
	messages service.MessageService,
	log *zap.Logger,
) *ClientHandler {
	return &ClientHandler{reports: reports, classes: classes, subscriptions: subscriptions, messages: messages, log: log}
}

// memberID is the caller's member ID; AuthMiddleware sets it from the session.
func memberID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// Dashboard godoc
// @Summary Member dashboard
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ClientDashboard
// @Router /client/dashboard [get]
func (h *ClientHandler) Dashboard(c *gin.Context) {
	d, err := h.reports.ClientDashboard(c.Request.Context(), gymID(c), memberID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *ClientHandler) ListClasses(c *gin.Context) {
	classes, err := h.classes.ListClasses(c.Request.Context(), gymID(c), classFilter(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *ClientHandler) UpcomingClasses(c *gin.Context) {
	classes, err := h.classes.Upcoming(c.Request.Context(), gymID(c), upcomingLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *ClientHandler) BookClass(c *gin.Context) {
	class, err := h.classes.Book(c.Request.Context(), gymID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *ClientHandler) Subscriptions(c *gin.Context) {
	subs, err := h.subscriptions.ListSubscriptions(c.Request.Context(), gymID(c), memberID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// Renew restarts the caller's latest plan today.
func (h *ClientHandler) Renew(c *gin.Context) {
	sub, err := h.subscriptions.Renew(c.Request.Context(), gymID(c), memberID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// Messages returns the caller's conversation with their gym.
func (h *ClientHandler) Messages(c *gin.Context) {
	msgs, err := h.messages.Conversation(c.Request.Context(), gymID(c), memberID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *ClientHandler) SendMessage(c *gin.Context) {
	var req MessageRequest
	if !bindJSON(c, &req) {
		return
	}
	id := memberID(c)
	msg, err := h.messages.Send(c.Request.Context(), gymID(c), id, id, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
