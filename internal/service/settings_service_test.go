package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/internal/repository"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

type brokenSettingsRepo struct{}

func (brokenSettingsRepo) Load(context.Context) (*models.ScrapeSettings, error) {
	return nil, errors.New("decode settings: unexpected EOF")
}

func (brokenSettingsRepo) Save(context.Context, *models.ScrapeSettings) error {
	return errors.New("read-only")
}

func newSettingsServiceForTest(t *testing.T) *SettingsService {
	t.Helper()
	repo := repository.NewSettingsRepository(filepath.Join(t.TempDir(), "scraper_config.json"))
	svc := NewSettingsService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestSettingsDefaults(t *testing.T) {
	svc := newSettingsServiceForTest(t)
	assert.Equal(t, models.DefaultScrapeSettings(), svc.Get(context.Background()))

	broken := NewSettingsService(brokenSettingsRepo{}, nil, nil)
	assert.Equal(t, models.DefaultScrapeSettings(), broken.Get(context.Background()))
}

func TestSettingsUpdateCustomRange(t *testing.T) {
	svc := newSettingsServiceForTest(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, models.ScrapeSettings{
		DateFilter:      models.DateFilterCustom,
		ProductsFilter:  "Raz-Plus",
		CustomStartDate: "01/03/2024",
		CustomEndDate:   "30/04/2024",
		Tabs:            map[models.ReportType]bool{models.ReportTypeSkill: false},
	})
	require.NoError(t, err)
	assert.False(t, updated.Tabs[models.ReportTypeSkill])
	assert.True(t, updated.Tabs[models.ReportTypeStudentUsage])

	stored := svc.Get(ctx)
	assert.Equal(t, *updated, stored)
	assert.NotContains(t, stored.EnabledTabs(), models.ReportTypeSkill)

	period, dateRange := svc.Period(ctx)
	assert.Equal(t, "Marzo - Abril 2024", period)
	assert.Equal(t, "01 Marzo 2024 - 30 Abril 2024", dateRange)
}

func TestSettingsUpdateClearsCustomDates(t *testing.T) {
	svc := newSettingsServiceForTest(t)

	updated, err := svc.Update(context.Background(), models.ScrapeSettings{
		DateFilter:      models.DateFilterLast7Days,
		ProductsFilter:  "All",
		CustomStartDate: "01/03/2024",
	})
	require.NoError(t, err)
	assert.Empty(t, updated.CustomStartDate)
	assert.Len(t, updated.EnabledTabs(), len(models.AllReportTypes()))
}

func TestSettingsUpdateValidation(t *testing.T) {
	svc := newSettingsServiceForTest(t)

	cases := map[string]models.ScrapeSettings{
		"missing filter":  {ProductsFilter: "All"},
		"unknown filter":  {DateFilter: "Yesterday", ProductsFilter: "All"},
		"unknown product": {DateFilter: models.DateFilterToday, ProductsFilter: "Comics"},
		"range too long":  {DateFilter: models.DateFilterCustom, ProductsFilter: "All", CustomStartDate: "01/01/2023", CustomEndDate: "01/03/2024"},
		"unknown tab":     {DateFilter: models.DateFilterToday, ProductsFilter: "All", Tabs: map[models.ReportType]bool{"Quiz": true}},
	}
	for name, settings := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), settings)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestSettingsUpdateSaveFailure(t *testing.T) {
	svc := NewSettingsService(brokenSettingsRepo{}, nil, nil)
	_, err := svc.Update(context.Background(), models.DefaultScrapeSettings())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
