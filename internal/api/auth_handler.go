package api

import (
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService   service.AuthService
	tariffService service.TariffService
	log           *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, tariffService service.TariffService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, tariffService: tariffService, log: log}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	GymName   string `json:"gymName" binding:"required"`
	AdminName string `json:"adminName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required"`
	PlanID    string `json:"planId"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new gym
// @Description Creates a gym with its administrator account and seeds its plans. No session is opened.
// @Tags Auth
// @Accept json
// @Produce json
// @Param gym body RegisterRequest true "Gym and administrator details"
// @Success 201 {object} domain.Gym
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Gym name or email already used"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	gym, err := h.authService.Register(c.Request.Context(), service.GymInput{
		GymName:   req.GymName,
		AdminName: req.AdminName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		PlanID:    req.PlanID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gym)
}

// Login godoc
// @Summary Log in any user
// @Description Tries the platform administrator, then gym administrators, then members.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), session.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the session of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session, "home": session.Role.HomePath()})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	session, ok := mustSession(c)
	if !ok {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), session, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated", "home": session.Role.HomePath()})
}

// PublicTariffs lists the active tariffs offered on the signup page.
func (h *AuthHandler) PublicTariffs(c *gin.Context) {
	tariffs, err := h.tariffService.ActiveTariffs(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if tariffs == nil {
		tariffs = []domain.Plan{}
	}
	c.JSON(http.StatusOK, tariffs)
}
