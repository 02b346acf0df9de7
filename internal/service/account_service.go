package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

// MaxAccountsUpload bounds an uploaded accounts file.
const MaxAccountsUpload = 1 << 20

type accountRepository interface {
	List(ctx context.Context) ([]models.ScraperAccount, error)
	Replace(ctx context.Context, accounts []models.ScraperAccount) error
}

// AccountService manages the platform logins the scraper uses. Passwords are
// written to the accounts file but never returned.
type AccountService struct {
	repo      accountRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewAccountService(repo accountRepository, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{repo: repo, validator: validate, logger: logger}
}

// List returns the stored usernames.
func (s *AccountService) List(ctx context.Context) ([]models.ScraperAccountView, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scraper accounts")
	}
	return accountViews(accounts), nil
}

// Replace stores accounts. An entry with an empty password keeps the stored
// password of the same username.
func (s *AccountService) Replace(ctx context.Context, accounts []models.ScraperAccount) ([]models.ScraperAccountView, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scraper accounts")
	}
	current := make(map[string]string, len(stored))
	for _, account := range stored {
		current[account.Username] = account.Password
	}

	next := make([]models.ScraperAccount, len(accounts))
	for i, account := range accounts {
		account.Username = strings.TrimSpace(account.Username)
		if account.Password == "" {
			account.Password = current[account.Username]
		}
		next[i] = account
	}
	return s.save(ctx, next)
}

// Import replaces every account with the JSON array read from r.
func (s *AccountService) Import(ctx context.Context, filename string, r io.Reader) ([]models.ScraperAccountView, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".json") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file must be a JSON file")
	}
	raw, err := io.ReadAll(io.LimitReader(r, MaxAccountsUpload+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read uploaded file")
	}
	if len(raw) > MaxAccountsUpload {
		return nil, appErrors.Clone(appErrors.ErrValidation, "uploaded file is too large")
	}
	if !utf8.Valid(raw) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file encoding not supported, please use UTF-8")
	}

	var accounts []models.ScraperAccount
	if err := json.Unmarshal(raw, &accounts); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "JSON file must contain an array of users")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid JSON file format")
	}
	if accounts == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "JSON file must contain an array of users")
	}
	for i := range accounts {
		accounts[i].Username = strings.TrimSpace(accounts[i].Username)
	}
	return s.save(ctx, accounts)
}

func (s *AccountService) save(ctx context.Context, accounts []models.ScraperAccount) ([]models.ScraperAccountView, error) {
	seen := make(map[string]struct{}, len(accounts))
	for i, account := range accounts {
		if err := s.validator.Struct(account); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("user %d must have username and password fields", i+1))
		}
		if _, dup := seen[account.Username]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate username "+account.Username)
		}
		seen[account.Username] = struct{}{}
	}

	if err := s.repo.Replace(ctx, accounts); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scraper accounts")
	}
	s.logger.Info("scraper accounts saved", zap.Int("count", len(accounts)))
	return accountViews(accounts), nil
}

func accountViews(accounts []models.ScraperAccount) []models.ScraperAccountView {
	out := make([]models.ScraperAccountView, len(accounts))
	for i, account := range accounts {
		out[i] = account.View()
	}
	return out
}
