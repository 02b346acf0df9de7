package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

func TestSettingsRepositoryRoundTrip(t *testing.T) {
	repo := NewSettingsRepository(filepath.Join(t.TempDir(), "config", "scraper_config.json"))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)

	settings := models.DefaultScrapeSettings()
	settings.DateFilter = models.DateFilterCustom
	settings.CustomStartDate = "01/03/2024"
	settings.CustomEndDate = "30/04/2024"
	settings.Tabs[models.ReportTypeSkill] = false
	require.NoError(t, repo.Save(context.Background(), &settings))

	loaded, err = repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, settings, *loaded)

	entries, err := os.ReadDir(filepath.Dir(repo.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSettingsRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper_config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewSettingsRepository(path).Load(context.Background())
	require.Error(t, err)
}
