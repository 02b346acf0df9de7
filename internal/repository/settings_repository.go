package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

// SettingsRepository persists scrape settings as a JSON document shared with
// the scraper process.
type SettingsRepository struct {
	path string
	mu   sync.Mutex
}

// NewSettingsRepository stores settings at path.
func NewSettingsRepository(path string) *SettingsRepository {
	return &SettingsRepository{path: path}
}

// Path returns the backing file location.
func (r *SettingsRepository) Path() string {
	return r.path
}

// Load reads the stored settings. A missing file returns nil without error.
func (r *SettingsRepository) Load(ctx context.Context) (*models.ScrapeSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var settings models.ScrapeSettings
	found, err := readJSONFile(r.path, "settings", &settings)
	if err != nil || !found {
		return nil, err
	}
	return &settings, nil
}

// Save replaces the stored settings through a temp file and rename.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.ScrapeSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSONFile(r.path, "settings", settings)
}
