package api

import (
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/export"
	"f2fit/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the platform administrator section.
type AdminHandler struct {
	gyms    service.GymService
	tariffs service.TariffService
	reports service.ReportService
	exports service.ExportService
	log     *zap.Logger
}

func NewAdminHandler(
	gyms service.GymService,
	tariffs service.TariffService,
	reports service.ReportService,
	exports service.ExportService,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{gyms: gyms, tariffs: tariffs, reports: reports, exports: exports, log: log}
}

// --- DTOs ---

type GymRequest struct {
	GymName             string      `json:"gymName" binding:"required"`
	AdminName           string      `json:"adminName" binding:"required"`
	Email               string      `json:"email" binding:"required,email"`
	Phone               string      `json:"phone"`
	Password            string      `json:"password"`
	PlanID              string      `json:"planId"`
	SubscriptionEndDate domain.Date `json:"subscriptionEndDate"`
}

func (r GymRequest) input() service.GymInput {
	return service.GymInput{
		GymName:             r.GymName,
		AdminName:           r.AdminName,
		Email:               r.Email,
		Phone:               r.Phone,
		Password:            r.Password,
		PlanID:              r.PlanID,
		SubscriptionEndDate: r.SubscriptionEndDate,
	}
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PlanRequest struct {
	Name         string `json:"name" binding:"required"`
	Price        int64  `json:"price" binding:"gte=0"`
	DurationDays int    `json:"duration" binding:"required,gte=1"`
	Benefits     string `json:"benefits"`
}

func (r PlanRequest) input() service.PlanInput {
	return service.PlanInput{Name: r.Name, Price: r.Price, DurationDays: r.DurationDays, Benefits: r.Benefits}
}

type ExportRequestBody struct {
	Entity  string          `json:"entity"`
	Period  string          `json:"period"`
	Format  string          `json:"format" binding:"required"`
	Search  string          `json:"search"`
	Columns []export.Column `json:"columns"`
	Store   bool            `json:"store"`
}

// --- Gyms ---

// ListGyms godoc
// @Summary List gyms
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, disabled or expired"
// @Param search query string false "Matches gym name, admin name or email"
// @Success 200 {array} service.GymView
// @Router /admin/gyms [get]
func (h *AdminHandler) ListGyms(c *gin.Context) {
	gyms, err := h.gyms.ListGyms(c.Request.Context(), service.GymFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gyms)
}

func (h *AdminHandler) GetGym(c *gin.Context) {
	gym, err := h.gyms.GetGym(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

func (h *AdminHandler) CreateGym(c *gin.Context) {
	var req GymRequest
	if !bindJSON(c, &req) {
		return
	}
	gym, err := h.gyms.CreateGym(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gym)
}

func (h *AdminHandler) UpdateGym(c *gin.Context) {
	var req GymRequest
	if !bindJSON(c, &req) {
		return
	}
	gym, err := h.gyms.UpdateGym(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

// SetGymStatus enables or disables a gym. A disabled gym's admin can no longer log in.
func (h *AdminHandler) SetGymStatus(c *gin.Context) {
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	gym, err := h.gyms.SetGymStatus(c.Request.Context(), c.Param("id"), domain.GymStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

// DeleteGym godoc
// @Summary Delete a gym and every record of its tenant
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Gym ID"
// @Success 204
// @Failure 404 {object} gin.H "Gym not found"
// @Router /admin/gyms/{id} [delete]
func (h *AdminHandler) DeleteGym(c *gin.Context) {
	if err := h.gyms.DeleteGym(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tariffs ---

func (h *AdminHandler) ListTariffs(c *gin.Context) {
	tariffs, err := h.tariffs.ListTariffs(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tariffs)
}

func (h *AdminHandler) CreateTariff(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	tariff, err := h.tariffs.CreateTariff(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, tariff)
}

func (h *AdminHandler) UpdateTariff(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	tariff, err := h.tariffs.UpdateTariff(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

func (h *AdminHandler) SetTariffStatus(c *gin.Context) {
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	tariff, err := h.tariffs.SetTariffStatus(c.Request.Context(), c.Param("id"), domain.PlanStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

func (h *AdminHandler) DeleteTariff(c *gin.Context) {
	if err := h.tariffs.DeleteTariff(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Reports and exports ---

// Report godoc
// @Summary Platform report
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param period query string false "day, week, month (default), year or all"
// @Success 200 {object} service.PlatformReport
// @Router /admin/reports [get]
func (h *AdminHandler) Report(c *gin.Context) {
	period, err := service.ParseReportPeriod(c.Query("period"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	report, err := h.reports.PlatformReport(c.Request.Context(), period)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportGyms renders the gym roster. See writeExport for the response shape.
func (h *AdminHandler) ExportGyms(c *gin.Context) {
	var req ExportRequestBody
	if !bindJSON(c, &req) {
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.exports.ExportGyms(c.Request.Context(), service.ExportRequest{
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

// ExportReport renders the platform report metrics of the requested period.
func (h *AdminHandler) ExportReport(c *gin.Context) {
	var req ExportRequestBody
	if !bindJSON(c, &req) {
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	period, err := service.ParseReportPeriod(req.Period)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	result, err := h.exports.ExportReport(c.Request.Context(), period, service.ExportRequest{
		Format:  format,
		Columns: req.Columns,
		Store:   req.Store,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writeExport(c, result)
}

// writeExport answers with a download link for stored exports, else with the file itself.
func writeExport(c *gin.Context, result *service.ExportResult) {
	if result.DownloadURL != "" {
		c.JSON(http.StatusOK, result)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.File.ContentType, result.File.Data)
}
