package api

import (
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GymHandler serves the gym administrator section. Every call is scoped to
// the gym of the caller's session.
type GymHandler struct {
	members       service.MemberService
	subscriptions service.SubscriptionService
	plans         service.PlanService
	coaches       service.CoachService
	classes       service.ClassService
	equipment     service.EquipmentService
	messages      service.MessageService
	reports       service.ReportService
	exports       service.ExportService
	log           *zap.Logger
}

// GymServices groups the services behind the gym section.
type GymServices struct {
	Members       service.MemberService
	Subscriptions service.SubscriptionService
	Plans         service.PlanService
	Coaches       service.CoachService
	Classes       service.ClassService
	Equipment     service.EquipmentService
	Messages      service.MessageService
	Reports       service.ReportService
	Exports       service.ExportService
}

func NewGymHandler(s GymServices, log *zap.Logger) *GymHandler {
	return &GymHandler{
		members:       s.Members,
		subscriptions: s.Subscriptions,
		plans:         s.Plans,
		coaches:       s.Coaches,
		classes:       s.Classes,
		equipment:     s.Equipment,
		messages:      s.Messages,
		reports:       s.Reports,
		exports:       s.Exports,
		log:           log,
	}
}

// --- DTOs ---

type MemberRequest struct {
	Name   string              `json:"name" binding:"required"`
	Email  string              `json:"email" binding:"required,email"`
	Phone  string              `json:"phone"`
	Status domain.MemberStatus `json:"status"`
	PlanID string              `json:"planId"`
}

func (r MemberRequest) input() service.MemberInput {
	return service.MemberInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Status: r.Status, PlanID: r.PlanID}
}

type SubscriptionRequest struct {
	MemberID  string      `json:"memberId" binding:"required"`
	PlanID    string      `json:"planId" binding:"required"`
	StartDate domain.Date `json:"startDate"`
}

// gymID is the tenant of the caller. AuthMiddleware always sets it.
func gymID(c *gin.Context) string {
	return c.GetString(ContextGymIDKey)
}

// --- Dashboard ---

// Dashboard godoc
// @Summary Gym dashboard
// @Tags Gym
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.GymDashboard
// @Router /gym/dashboard [get]
func (h *GymHandler) Dashboard(c *gin.Context) {
	d, err := h.reports.GymDashboard(c.Request.Context(), gymID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// RevenueChart godoc
// @Summary Subscription revenue per week, month or year
// @Tags Gym
// @Produce json
// @Security BearerAuth
// @Param timeframe query string false "weekly, monthly (default) or yearly"
// @Success 200 {object} service.RevenueChart
// @Router /gym/reports/revenue [get]
func (h *GymHandler) RevenueChart(c *gin.Context) {
	tf, err := service.ParseRevenueTimeframe(c.Query("timeframe"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	chart, err := h.reports.RevenueChart(c.Request.Context(), gymID(c), tf)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// --- Members ---

// ListMembers godoc
// @Summary List members with their subscription state
// @Tags Gym
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches name, email or phone"
// @Param status query string false "Member status or subscription state"
// @Success 200 {array} service.MemberView
// @Router /gym/members [get]
func (h *GymHandler) ListMembers(c *gin.Context) {
	members, err := h.members.ListMembers(c.Request.Context(), gymID(c), c.Query("search"), c.Query("status"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *GymHandler) GetMember(c *gin.Context) {
	member, err := h.members.GetMember(c.Request.Context(), gymID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *GymHandler) CreateMember(c *gin.Context) {
	var req MemberRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.members.CreateMember(c.Request.Context(), gymID(c), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *GymHandler) UpdateMember(c *gin.Context) {
	var req MemberRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.members.UpdateMember(c.Request.Context(), gymID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *GymHandler) DeleteMember(c *gin.Context) {
	if err := h.members.DeleteMember(c.Request.Context(), gymID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenewMember restarts the member's latest plan today.
func (h *GymHandler) RenewMember(c *gin.Context) {
	sub, err := h.subscriptions.Renew(c.Request.Context(), gymID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// --- Subscriptions ---

func (h *GymHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptions.ListSubscriptions(c.Request.Context(), gymID(c), c.Query("memberId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// CreateSubscription godoc
// @Summary Subscribe a member to a plan
// @Description Fails with 409 while the member has a subscription running.
// @Tags Gym
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subscription body SubscriptionRequest true "Member, plan and optional start date"
// @Success 201 {object} domain.Subscription
// @Failure 404 {object} gin.H "Member or plan not found"
// @Failure 409 {object} gin.H "Subscription already running or plan disabled"
// @Router /gym/subscriptions [post]
func (h *GymHandler) CreateSubscription(c *gin.Context) {
	var req SubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subscriptions.CreateSubscription(c.Request.Context(), gymID(c), req.MemberID, req.PlanID, req.StartDate)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *GymHandler) DeleteSubscription(c *gin.Context) {
	if err := h.subscriptions.DeleteSubscription(c.Request.Context(), gymID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Plans ---

func (h *GymHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.ListPlans(c.Request.Context(), gymID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *GymHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), gymID(c), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *GymHandler) UpdatePlan(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.UpdatePlan(c.Request.Context(), gymID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *GymHandler) TogglePlan(c *gin.Context) {
	plan, err := h.plans.TogglePlanStatus(c.Request.Context(), gymID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *GymHandler) DeletePlan(c *gin.Context) {
	if err := h.plans.DeletePlan(c.Request.Context(), gymID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
