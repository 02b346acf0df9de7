package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
	"github.com/noah-isme/reading-reports-api/pkg/response"
)

const accountsFormField = "users_file"

type accountService interface {
	List(ctx context.Context) ([]models.ScraperAccountView, error)
	Replace(ctx context.Context, accounts []models.ScraperAccount) ([]models.ScraperAccountView, error)
	Import(ctx context.Context, filename string, r io.Reader) ([]models.ScraperAccountView, error)
}

// AccountHandler manages the scraper's platform logins.
type AccountHandler struct {
	accounts accountService
	logger   *zap.Logger
}

func NewAccountHandler(accounts accountService, logger *zap.Logger) *AccountHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountHandler{accounts: accounts, logger: logger}
}

// List godoc
// @Summary Scraper accounts
// @Description Passwords are never returned.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, nil)
}

// Replace godoc
// @Summary Replace scraper accounts
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ReplaceAccountsRequest true "Accounts"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users [put]
func (h *AccountHandler) Replace(c *gin.Context) {
	var req models.ReplaceAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "users must be a list"))
		return
	}
	if req.Users == nil {
		req.Users = []models.ScraperAccount{}
	}
	accounts, err := h.accounts.Replace(c.Request.Context(), req.Users)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, nil)
}

// Upload godoc
// @Summary Upload scraper accounts file
// @Tags Users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param users_file formData file true "JSON array of accounts"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/upload [post]
func (h *AccountHandler) Upload(c *gin.Context) {
	header, err := c.FormFile(accountsFormField)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "no file uploaded"))
		return
	}
	if header.Filename == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no file selected"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "uploaded file unreadable"))
		return
	}
	defer file.Close() //nolint:errcheck

	accounts, err := h.accounts.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.logger.Warn("scraper accounts upload rejected", zap.String("filename", header.Filename), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, nil, map[string]interface{}{"imported": len(accounts)})
}
