package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"catalog-service/internal/config"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

const (
	accessTokenCookie = "access_token"
	tokenLifetime     = 48 * time.Hour
)

type AuthHandler struct {
	users  repository.UserRepository
	cfg    *config.Config
	logger *logrus.Entry
}

func NewAuthHandler(users repository.UserRepository, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		cfg:    cfg,
		logger: logger.WithField("component", "auth-handler"),
	}
}

// Register creates an operator account
// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INTERNAL_ERROR", Message: "Failed to create account"},
		})
		return
	}

	user := &models.AdminUser{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hash),
	}
	if err := h.users.Insert(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "EMAIL_TAKEN", Message: "An account with this email already exists"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INTERNAL_ERROR", Message: "Failed to create account"},
		})
		return
	}

	h.logger.WithField("email", user.Email).Info("Operator account created")

	msg := "Account created"
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Message: &msg})
}

// Login verifies credentials and sets the access token cookie
// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		// Same response for unknown email and wrong password
		h.writeInvalidCredentials(c)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.writeInvalidCredentials(c)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(tokenLifetime).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INTERNAL_ERROR", Message: "Failed to sign in"},
		})
		return
	}

	secure := h.cfg.Environment == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, signed, int(tokenLifetime.Seconds()), "/", "", secure, true)

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    gin.H{"id": user.ID, "email": user.Email},
	})
}

// Signout clears the access token cookie
// POST /api/users/signout
func (h *AuthHandler) Signout(c *gin.Context) {
	secure := h.cfg.Environment == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", secure, true)

	msg := "Signed out"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &msg})
}

func (h *AuthHandler) writeInvalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"},
	})
}
