package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxUniqueAttempts bounds the suffix search in SaveUnique.
const maxUniqueAttempts = 1000

// LocalStorage persists report files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// Entry describes a stored file.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Dir returns the base directory.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Save writes data to filename under the base dir, replacing any existing file.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare reports directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return filename, nil
}

// SaveUnique writes data without overwriting. When filename is taken a _<n>
// suffix is inserted before the extension. The stored name is returned.
func (s *LocalStorage) SaveUnique(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare reports directory: %w", err)
	}
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	name := filename
	for attempt := 1; attempt <= maxUniqueAttempts; attempt++ {
		file, err := os.OpenFile(s.resolve(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if _, err := file.Write(data); err != nil {
				_ = file.Close()
				return "", fmt.Errorf("write report file: %w", err)
			}
			if err := file.Close(); err != nil {
				return "", fmt.Errorf("close report file: %w", err)
			}
			return name, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create report file: %w", err)
		}
		name = stem + "_" + strconv.Itoa(attempt) + ext
	}
	return "", fmt.Errorf("create report file: no free name for %s", filename)
}

// SaveStream copies from reader into the target file path.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare reports directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write report stream: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(filename string) (*os.File, error) {
	file, err := os.Open(s.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	return file, nil
}

// Stat describes a stored file.
func (s *LocalStorage) Stat(filename string) (Entry, error) {
	info, err := os.Stat(s.resolve(filename))
	if err != nil {
		return Entry{}, fmt.Errorf("stat report file: %w", err)
	}
	return Entry{Name: filename, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(filename string) error {
	if err := os.Remove(s.resolve(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete report file: %w", err)
	}
	return nil
}

// List returns the top-level files matching pattern, newest first.
func (s *LocalStorage) List(pattern string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list reports: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		if d.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: d.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name > entries[j].Name
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Clean removes every top-level file matching pattern and returns the names.
func (s *LocalStorage) Clean(pattern string) ([]string, error) {
	entries, err := s.List(pattern)
	if err != nil {
		return nil, err
	}
	deleted := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := s.Delete(entry.Name); err != nil {
			return deleted, err
		}
		deleted = append(deleted, entry.Name)
	}
	return deleted, nil
}

// CleanupOlderThan removes files older than the provided TTL and returns deleted names.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup reports: %w", err)
	}
	return deleted, nil
}

// Path exposes the absolute location of a stored file.
func (s *LocalStorage) Path(filename string) string {
	return s.resolve(filename)
}

func (s *LocalStorage) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}

// ValidFilename rejects names that could escape the base directory.
func ValidFilename(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, `/\:*?"<>|`) && !strings.Contains(name, "..")
}

// HumanSize renders a byte count using binary units.
func HumanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
