package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

// AccountRepository stores the scraper's platform logins as a JSON array.
type AccountRepository struct {
	path string
	mu   sync.Mutex
}

func NewAccountRepository(path string) *AccountRepository {
	return &AccountRepository{path: path}
}

// Path returns the accounts file handed to the scraper.
func (r *AccountRepository) Path() string {
	return r.path
}

// List returns the stored accounts, empty when the file does not exist yet.
func (r *AccountRepository) List(ctx context.Context) ([]models.ScraperAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := []models.ScraperAccount{}
	if _, err := readJSONFile(r.path, "accounts", &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []models.ScraperAccount{}
	}
	return accounts, nil
}

// Replace overwrites every stored account.
func (r *AccountRepository) Replace(ctx context.Context, accounts []models.ScraperAccount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if accounts == nil {
		accounts = []models.ScraperAccount{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSONFile(r.path, "accounts", accounts)
}
