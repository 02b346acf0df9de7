package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/daterange"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
)

type settingsRepository interface {
	Load(ctx context.Context) (*models.ScrapeSettings, error)
	Save(ctx context.Context, settings *models.ScrapeSettings) error
}

// SettingsService reads and validates scrape settings.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Get returns the stored settings, falling back to defaults when the file is
// missing or unreadable.
func (s *SettingsService) Get(ctx context.Context) models.ScrapeSettings {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("using default scrape settings", zap.Error(err))
		return models.DefaultScrapeSettings()
	}
	if stored == nil {
		return models.DefaultScrapeSettings()
	}
	return withDefaultTabs(*stored)
}

// Update validates and stores settings.
func (s *SettingsService) Update(ctx context.Context, settings models.ScrapeSettings) (*models.ScrapeSettings, error) {
	settings.DateFilter = strings.TrimSpace(settings.DateFilter)
	settings.ProductsFilter = strings.TrimSpace(settings.ProductsFilter)
	if err := s.validator.Struct(settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date_filter and products_filter are required")
	}
	if !contains(models.DateFilters(), settings.DateFilter) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown date filter "+settings.DateFilter)
	}
	if !contains(models.ProductFilters(), settings.ProductsFilter) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown products filter "+settings.ProductsFilter)
	}
	if settings.DateFilter == models.DateFilterCustom {
		if err := daterange.ValidateCustom(settings.CustomStartDate, settings.CustomEndDate); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
	} else {
		settings.CustomStartDate = ""
		settings.CustomEndDate = ""
	}
	for t := range settings.Tabs {
		if !t.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report tab "+string(t))
		}
	}
	settings = withDefaultTabs(settings)

	if err := s.repo.Save(ctx, &settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	s.logger.Info("scrape settings updated",
		zap.String("date_filter", settings.DateFilter),
		zap.String("products_filter", settings.ProductsFilter),
	)
	return &settings, nil
}

// Period resolves the configured date filter into the Spanish subtitle and
// range string shown on the dashboard.
func (s *SettingsService) Period(ctx context.Context) (string, string) {
	settings := s.Get(ctx)
	start, end := daterange.Resolve(settings.DateFilter, settings.CustomStartDate, settings.CustomEndDate, s.now())
	return daterange.Subtitle(start, end), daterange.RangeString(start, end)
}

func withDefaultTabs(settings models.ScrapeSettings) models.ScrapeSettings {
	tabs := make(map[models.ReportType]bool, len(models.AllReportTypes()))
	for _, t := range models.AllReportTypes() {
		on, ok := settings.Tabs[t]
		tabs[t] = !ok || on
	}
	settings.Tabs = tabs
	return settings
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
