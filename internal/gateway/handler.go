package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/analysis"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/auth"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/credentials"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/generation"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/models"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/orchestration"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
)

// Handler handles HTTP requests for the gateway layer
type Handler struct {
	engine            *orchestration.Engine
	generationService *generation.Service
	credStore         *credentials.Store
	jwtManager        *auth.JWTManager
	hub               *ProgressHub
	adminUsername     string
	adminPasswordHash string
}

// NewHandler creates a new gateway handler
func NewHandler(engine *orchestration.Engine, generationService *generation.Service, credStore *credentials.Store, jwtManager *auth.JWTManager, hub *ProgressHub, adminUsername, adminPasswordHash string) *Handler {
	return &Handler{
		engine:            engine,
		generationService: generationService,
		credStore:         credStore,
		jwtManager:        jwtManager,
		hub:               hub,
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary Operator login
// @Description Authenticate the operator and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Code: models.ErrCodeInvalidRequest})
		return
	}

	if req.Username != h.adminUsername {
		logrus.WithField("username", req.Username).Warn("Login attempt for unknown user")
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid username or password", Code: models.ErrCodeUnauthorized})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(req.Password)); err != nil {
		logrus.WithField("username", req.Username).Warn("Login attempt with invalid password")
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid username or password", Code: models.ErrCodeUnauthorized})
		return
	}

	token, err := h.jwtManager.GenerateToken(c.Request.Context(), req.Username, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token", Code: models.ErrCodeInternalError})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

// SetCredentialsRequest carries provider API keys
type SetCredentialsRequest struct {
	Credentials map[string]string `json:"credentials" binding:"required"`
}

// SetCredentialsResponse lists the providers whose credentials were accepted
// and the models they enable.
type SetCredentialsResponse struct {
	AcceptedProviders []string `json:"accepted_providers"`
	EnabledModels     []string `json:"enabled_models"`
}

// SetCredentials godoc
// @Summary Configure provider credentials
// @Description Validate and store API credentials per provider; format checks only
// @Tags credentials
// @Accept json
// @Produce json
// @Param request body SetCredentialsRequest true "Provider credentials"
// @Success 200 {object} SetCredentialsResponse
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /credentials [post]
func (h *Handler) SetCredentials(c *gin.Context) {
	var req SetCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Code: models.ErrCodeInvalidRequest})
		return
	}

	keys := make(map[registry.Provider]string, len(req.Credentials))
	for provider, key := range req.Credentials {
		keys[registry.Provider(provider)] = key
	}

	accepted := h.credStore.Set(keys)
	providers := make([]string, 0, len(accepted))
	for _, p := range accepted {
		providers = append(providers, string(p))
	}

	var enabled []string
	for _, m := range h.generationService.AvailableModels() {
		enabled = append(enabled, m.ID)
	}

	c.JSON(http.StatusOK, SetCredentialsResponse{
		AcceptedProviders: providers,
		EnabledModels:     enabled,
	})
}

// ListModels godoc
// @Summary List available models
// @Description List models whose provider has a configured credential
// @Tags models
// @Produce json
// @Success 200 {array} registry.ModelDescriptor
// @Security BearerAuth
// @Router /models [get]
func (h *Handler) ListModels(c *gin.Context) {
	available := h.generationService.AvailableModels()
	if available == nil {
		available = []registry.ModelDescriptor{}
	}
	c.JSON(http.StatusOK, available)
}

// StartRefinementRequest represents a refinement start request
type StartRefinementRequest struct {
	Prompt         string                       `json:"prompt" binding:"required"`
	ModelSelection orchestration.ModelSelection `json:"model_selection" binding:"required"`
	Iterations     int                          `json:"iterations" binding:"required,min=1"`
}

// StartRefinementResponse is either pending clarifications or a completed result
type StartRefinementResponse struct {
	SessionID          string                           `json:"session_id"`
	NeedsClarification bool                             `json:"needs_clarification"`
	Questions          []analysis.ClarificationQuestion `json:"questions,omitempty"`
	Complete           bool                             `json:"complete"`
	Result             *orchestration.Result            `json:"result,omitempty"`
}

// StartRefinement godoc
// @Summary Start a refinement session
// @Description Analyze the prompt and either return clarification questions or run the full pipeline synchronously
// @Tags refinements
// @Accept json
// @Produce json
// @Param request body StartRefinementRequest true "Refinement request"
// @Success 200 {object} StartRefinementResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /refinements [post]
func (h *Handler) StartRefinement(c *gin.Context) {
	var req StartRefinementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Code: models.ErrCodeInvalidRequest})
		return
	}

	outcome, err := h.engine.Start(c.Request.Context(), req.Prompt, req.ModelSelection, req.Iterations, h.hub)
	if err != nil {
		h.respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartRefinementResponse{
		SessionID:          outcome.SessionID,
		NeedsClarification: outcome.NeedsClarification,
		Questions:          outcome.Questions,
		Complete:           outcome.Complete,
		Result:             outcome.Result,
	})
}

// SubmitClarificationRequest carries answers keyed by question id
type SubmitClarificationRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// SubmitClarification godoc
// @Summary Submit clarification answers
// @Description Validate the answers, refine the prompt with them, and run the pipeline
// @Tags refinements
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SubmitClarificationRequest true "Clarification answers"
// @Success 200 {object} StartRefinementResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /refinements/{id}/clarifications [post]
func (h *Handler) SubmitClarification(c *gin.Context) {
	sessionID := c.Param("id")

	var req SubmitClarificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Code: models.ErrCodeInvalidRequest})
		return
	}

	result, err := h.engine.SubmitClarification(c.Request.Context(), sessionID, req.Answers, h.hub)
	if err != nil {
		h.respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartRefinementResponse{
		SessionID: result.SessionID,
		Complete:  true,
		Result:    result,
	})
}

// respondEngineError maps engine error kinds to HTTP responses
func (h *Handler) respondEngineError(c *gin.Context, err error) {
	var validationErr *orchestration.ValidationError
	var notFoundErr *orchestration.SessionNotFoundError
	var noPendingErr *orchestration.NoClarificationPendingError
	var configErr *orchestration.ConfigurationError
	var providerErr *generation.ProviderCallError
	var tooLongErr *generation.PromptTooLongError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Validation failed",
			Code:    models.ErrCodeValidationFailed,
			Details: validationErr.Violations,
		})
	case errors.As(err, &tooLongErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: tooLongErr.Error(),
			Code:  models.ErrCodeValidationFailed,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: notFoundErr.Error(),
			Code:  models.ErrCodeSessionNotFound,
		})
	case errors.As(err, &noPendingErr):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: noPendingErr.Error(),
			Code:  models.ErrCodeNoClarificationPending,
		})
	case errors.As(err, &configErr):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: configErr.Error(),
			Code:  models.ErrCodeConfiguration,
		})
	case errors.As(err, &providerErr):
		logrus.WithError(err).Error("Pipeline aborted by provider failure")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error: err.Error(),
			Code:  models.ErrCodeProviderCall,
		})
	default:
		logrus.WithError(err).Error("Refinement failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: err.Error(),
			Code:  models.ErrCodeInternalError,
		})
	}
}
