package api

import (
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/export"
	"f2fit/gym-manager/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CoachRequest struct {
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Phone       string   `json:"phone"`
	Specialties []string `json:"specialties"`
}

func (r CoachRequest) input() service.CoachInput {
	return service.CoachInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Specialties: r.Specialties}
}

type ClassRequest struct {
	Name     string           `json:"name" binding:"required"`
	Type     domain.ClassType `json:"type" binding:"required,oneof=group individual"`
	CoachID  string           `json:"coachId"`
	Date     domain.Date      `json:"date"`
	Time     string           `json:"time" binding:"required"`
	Capacity int              `json:"maxParticipants" binding:"required,gte=1"`
}

func (r ClassRequest) input() service.ClassInput {
	return service.ClassInput{Name: r.Name, Type: r.Type, CoachID: r.CoachID, Date: r.Date, Time: r.Time, Capacity: r.Capacity}
}

type EquipmentRequest struct {
	Name            string                 `json:"name" binding:"required"`
	Quantity        int                    `json:"quantity" binding:"gte=0"`
	Status          domain.EquipmentStatus `json:"status" binding:"required"`
	LastMaintenance domain.Date            `json:"lastMaintenance"`
}

func (r EquipmentRequest) input() service.EquipmentInput {
	return service.EquipmentInput{Name: r.Name, Quantity: r.Quantity, Status: r.Status, LastMaintenance: r.LastMaintenance}
}

type MessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// --- Coaches ---

func (h *GymHandler) ListCoaches(c *gin.Context) {
	coaches, err := h.coaches.ListCoaches(c.Request.Context(), gymID(c), c.Query("search"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, coaches)
}

func (h *GymHandler) GetCoach(c *gin.Context) {
	coach, err := h.coaches.GetCoach(c.Request.Context(), gymID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, coach)
}

func (h *GymHandler) CreateCoach(c *gin.Context) {
	var req CoachRequest
	if !bindJSON(c, &req) {
		return
	}
	coach, err := h.coaches.CreateCoach(c.Request.Context(), gymID(c), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, coach)
}

func (h *GymHandler) UpdateCoach(c *gin.Context) {
	var req CoachRequest
	if !bindJSON(c, &req) {
		return
	}
	coach, err := h.coaches.UpdateCoach(c.Request.Context(), gymID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, coach)
}

func (h *GymHandler) DeleteCoach(c *gin.Context) {
	if err := h.coaches.DeleteCoach(c.Request.Context(), gymID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Classes ---

func classFilter(c *gin.Context) service.ClassFilter {
	return service.ClassFilter{
		Search:  c.Query("search"),
		Type:    domain.ClassType(c.Query("type")),
		CoachID: c.Query("coachId"),
	}
}

// upcomingLimit reads ?limit=, falling back to the default on anything unusable.
func upcomingLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 1 {
		return service.DefaultUpcomingLimit
	}
	return n
}

func (h *GymHandler) ListClasses(c *gin.Context) {
	classes, err := h.classes.ListClasses(c.Request.Context(), gymID(c), classFilter(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *GymHandler) UpcomingClasses(c *gin.Context) {
	classes, err := h.classes.Upcoming(c.Request.Context(), gymID(c), upcomingLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (h *GymHandler) GetClass(c *gin.Context) {
	class, err := h.classes.GetClass(c.Request.Context(), gymID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *GymHandler) CreateClass(c *gin.Context) {
	var req ClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.CreateClass(c.Request.Context(), gymID(c), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *GymHandler) UpdateClass(c *gin.Context) {
	var req ClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.UpdateClass(c.Request.Context(), gymID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *GymHandler) DeleteClass(c *gin.Context) {
	if err := h.classes.DeleteClass(c.Request.Context(), gymID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BookClass godoc
// @Summary Take one seat in a class
// @Tags Gym
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} domain.Class
// @Failure 404 {object} gin.H "Class not found"
// @Failure 409 {object} gin.H "Class is full"
// @Router /gym/classes/{id}/book [post]
func (h *GymHandler) BookClass(c *gin.Context) {
	class, err := h.classes.Book(c.Request.Context(), gymID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// --- Equipment ---

func (h *GymHandler) ListEquipment(c *gin.Context) {
	items, err := h.equipment.ListEquipment(c.Request.Context(), gymID(c), c.Query("search"), domain.EquipmentStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *GymHandler) CreateEquipment(c *gin.Context) {
	var req EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.equipment.CreateEquipment(c.Request.Context(), gymID(c), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *GymHandler) UpdateEquipment(c *gin.Context) {
	var req EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.equipment.UpdateEquipment(c.Request.Context(), gymID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *GymHandler) DeleteEquipment(c *gin.Context) {
	if err := h.equipment.DeleteEquipment(c.Request.Context(), gymID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Messages ---

func (h *GymHandler) Contacts(c *gin.Context) {
	contacts, err := h.messages.Contacts(c.Request.Context(), gymID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *GymHandler) Conversation(c *gin.Context) {
	msgs, err := h.messages.Conversation(c.Request.Context(), gymID(c), c.Param("contactId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *GymHandler) SendMessage(c *gin.Context) {
	var req MessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), gymID(c), c.Param("contactId"), c.GetString(ContextUserIDKey), req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// --- Exports ---

// Export godoc
// @Summary Export one collection of the gym
// @Description Returns the file, or a presigned download link when store is set.
// @Tags Gym
// @Accept json
// @Produce json,text/csv,application/pdf
// @Security BearerAuth
// @Param request body ExportRequestBody true "Entity, format, search and columns"
// @Success 200 {file} file
// @Failure 400 {object} gin.H "Unknown entity or format"
// @Failure 409 {object} gin.H "Export storage not configured"
// @Router /gym/exports [post]
func (h *GymHandler) Export(c *gin.Context) {
	var req ExportRequestBody
	if !bindJSON(c, &req) {
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.exports.ExportGymData(c.Request.Context(), gymID(c), service.ExportRequest{
		Entity:  req.Entity,
		Format:  format,
		Search:  req.Search,
		Columns: req.Columns,
		Store:   req.Store,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writeExport(c, result)
}
