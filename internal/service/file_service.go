package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
	"github.com/noah-isme/reading-reports-api/pkg/storage"
)

const workbookPattern = "*.xlsx"

type reportStorage interface {
	List(pattern string) ([]storage.Entry, error)
	Stat(filename string) (storage.Entry, error)
	Open(filename string) (*os.File, error)
	Clean(pattern string) ([]string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
	WriteZip(w io.Writer, names []string) (int, error)
	Path(filename string) string
}

type downloadSigner interface {
	Generate(filename string) (string, time.Time, error)
	Parse(token string) (string, time.Time, error)
}

// FileServiceConfig tunes report file management.
type FileServiceConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// FileService manages the workbooks kept in the reports directory.
type FileService struct {
	storage reportStorage
	signer  downloadSigner
	logger  *zap.Logger
	cfg     FileServiceConfig
}

func NewFileService(storage reportStorage, signer downloadSigner, cfg FileServiceConfig, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &FileService{storage: storage, signer: signer, logger: logger, cfg: cfg}
}

// List pages through stored workbooks newest first. The inventory always
// covers the whole directory.
func (s *FileService) List(ctx context.Context, page, pageSize int) (*models.ReportListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.storage.List(workbookPattern)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	listing := &models.ReportListing{
		Reports:    make([]models.StoredReport, 0, pageSize),
		Inventory:  inventory(entries),
		Pagination: models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(entries)},
	}
	start := (page - 1) * pageSize
	for i := start; i < len(entries) && i < start+pageSize; i++ {
		listing.Reports = append(listing.Reports, storedReport(entries[i]))
	}
	return listing, nil
}

// Latest returns the newest combined workbook by filename.
func (s *FileService) Latest(ctx context.Context) (*models.StoredReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.storage.List(CombinedPattern)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "no combined workbook has been generated yet")
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name > entries[j].Name })
	latest := storedReport(entries[0])
	return &latest, nil
}

// Link signs a time-limited download URL for filename.
func (s *FileService) Link(ctx context.Context, filename string) (*models.DownloadLink, error) {
	if _, err := s.stat(ctx, filename); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "download links are not configured")
	}
	return &models.DownloadLink{
		Filename:  filename,
		URL:       fmt.Sprintf("%s/reports/download/%s", s.cfg.APIPrefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve validates a download token and returns the stored file it names.
func (s *FileService) Resolve(ctx context.Context, token string) (*models.StoredReport, string, error) {
	filename, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	entry, err := s.stat(ctx, filename)
	if err != nil {
		return nil, "", err
	}
	report := storedReport(entry)
	return &report, s.storage.Path(filename), nil
}

// WriteZip streams every stored workbook into w as a zip archive.
func (s *FileService) WriteZip(ctx context.Context, w io.Writer) (int, error) {
	names, err := s.ZipContents(ctx)
	if err != nil {
		return 0, err
	}
	count, err := s.storage.WriteZip(w, names)
	if err != nil {
		return count, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build zip archive")
	}
	s.logger.Info("zip archive streamed", zap.Int("files", count))
	return count, nil
}

// ZipContents lists the files WriteZip would include, failing with ErrNoData
// when there are none.
func (s *FileService) ZipContents(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.storage.List(workbookPattern)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "no files available for download")
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names, nil
}

// CleanAll empties the reports directory. Used on start when configured.
func (s *FileService) CleanAll() (int, error) {
	removed, err := s.storage.Clean("*")
	if err != nil {
		return len(removed), err
	}
	if len(removed) > 0 {
		s.logger.Info("reports directory cleaned", zap.Int("files_removed", len(removed)))
	}
	return len(removed), nil
}

// Cleanup removes files older than ttl; ttl <= 0 uses the configured result TTL.
func (s *FileService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	if ttl <= 0 {
		return nil, nil
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *FileService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.cfg.ResultTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("report cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("expired reports removed", zap.Strings("files", removed))
			}
		}
	}
}

func (s *FileService) stat(ctx context.Context, filename string) (storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return storage.Entry{}, err
	}
	if !storage.ValidFilename(filename) {
		return storage.Entry{}, appErrors.Clone(appErrors.ErrValidation, "invalid filename")
	}
	entry, err := s.storage.Stat(filename)
	if err != nil {
		return storage.Entry{}, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	return entry, nil
}

func storedReport(entry storage.Entry) models.StoredReport {
	return models.StoredReport{
		Name:       entry.Name,
		Size:       entry.Size,
		SizeHuman:  storage.HumanSize(entry.Size),
		ModifiedAt: entry.ModTime,
		Combined:   strings.HasPrefix(entry.Name, CombinedPrefix),
	}
}

func inventory(entries []storage.Entry) models.ReportInventory {
	inv := models.ReportInventory{Count: len(entries)}
	for i, entry := range entries {
		inv.TotalSize += entry.Size
		mod := entry.ModTime
		if i == 0 || mod.After(*inv.Latest) {
			inv.Latest = &mod
		}
		if i == 0 || mod.Before(*inv.Oldest) {
			oldest := mod
			inv.Oldest = &oldest
		}
	}
	inv.TotalSizeHuman = storage.HumanSize(inv.TotalSize)
	return inv
}
