package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

const scraperOutputTail = 512

// CommandScraper runs the external browser scraper that downloads the
// platform exports into the reports directory. Settings are passed through
// the environment, along with the accounts file it signs in with.
type CommandScraper struct {
	command      []string
	timeout      time.Duration
	reportsDir   string
	accountsFile string
	logger       *zap.Logger
}

func NewCommandScraper(command []string, timeout time.Duration, reportsDir, accountsFile string, logger *zap.Logger) *CommandScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandScraper{command: command, timeout: timeout, reportsDir: reportsDir, accountsFile: accountsFile, logger: logger}
}

// Configured reports whether a scraper command is set.
func (s *CommandScraper) Configured() bool {
	return s != nil && len(s.command) > 0
}

// Scrape runs the command once and waits for it to exit.
func (s *CommandScraper) Scrape(ctx context.Context, settings models.ScrapeSettings) error {
	if !s.Configured() {
		s.logger.Info("no scraper command configured, combining existing exports")
		return nil
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Env = append(os.Environ(), scraperEnv(s.reportsDir, s.accountsFile, settings)...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	s.logger.Info("scraper started", zap.Strings("command", s.command), zap.String("date_filter", settings.DateFilter))
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("scraper timed out after %s", s.timeout)
		}
		return fmt.Errorf("scraper failed: %w: %s", err, tail(output.String(), scraperOutputTail))
	}
	s.logger.Info("scraper finished", zap.Duration("duration", time.Since(start)))
	return nil
}

func scraperEnv(reportsDir, accountsFile string, settings models.ScrapeSettings) []string {
	tabs := make([]string, 0, len(settings.Tabs))
	for _, t := range settings.EnabledTabs() {
		tabs = append(tabs, string(t))
	}
	return []string{
		"REPORTS_DIR=" + reportsDir,
		"SCRAPER_DATE_FILTER=" + settings.DateFilter,
		"SCRAPER_PRODUCTS_FILTER=" + settings.ProductsFilter,
		"SCRAPER_START_DATE=" + settings.CustomStartDate,
		"SCRAPER_END_DATE=" + settings.CustomEndDate,
		"SCRAPER_TABS=" + strings.Join(tabs, ","),
		"SCRAPER_USERS_FILE=" + accountsFile,
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
