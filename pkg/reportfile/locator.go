package reportfile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/models"
)

const lockFilePrefix = "~$"

// Locator enumerates report files across every storage root.
type Locator struct {
	roots  []string
	logger *zap.Logger
}

// NewLocator resolves reportsDir and any extra roots. The first root is primary.
func NewLocator(reportsDir string, extraRoots []string, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}

	candidates := ResolveRoots(reportsDir)
	for _, extra := range extraRoots {
		candidates = append(candidates, ResolveRoots(extra)...)
	}

	seen := make(map[string]struct{}, len(candidates))
	roots := make([]string, 0, len(candidates))
	for _, root := range candidates {
		clean := filepath.Clean(root)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		roots = append(roots, clean)
	}

	return &Locator{roots: roots, logger: logger}
}

// ResolveRoots maps a reports directory onto candidate storage roots. A relative
// name resolves next to the executable first and the working directory second.
func ResolveRoots(dir string) []string {
	if dir == "" {
		return nil
	}
	if filepath.IsAbs(dir) {
		return []string{dir}
	}

	roots := make([]string, 0, 2)
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		roots = append(roots, filepath.Join(filepath.Dir(exe), dir))
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, filepath.Join(wd, dir))
	}
	return roots
}

// Roots returns every candidate root, primary first.
func (l *Locator) Roots() []string {
	out := make([]string, len(l.roots))
	copy(out, l.roots)
	return out
}

// PrimaryRoot returns the first existing root, or the first candidate when none exists.
func (l *Locator) PrimaryRoot() string {
	for _, root := range l.roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return root
		}
	}
	if len(l.roots) == 0 {
		return ""
	}
	return l.roots[0]
}

// Locate returns the xlsx files of report type t. Missing roots yield no files.
func (l *Locator) Locate(t models.ReportType) []models.ReportFile {
	return l.LocateExt(t, "xlsx")
}

// LocateExt returns files named *_<t>_*.<ext>, deduplicated by filename.
func (l *Locator) LocateExt(t models.ReportType, ext string) []models.ReportFile {
	pattern := "*_" + string(t) + "_*." + strings.TrimPrefix(ext, ".")
	seen := make(map[string]struct{})
	files := make([]models.ReportFile, 0)

	for _, root := range l.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if !os.IsNotExist(err) {
				l.logger.Warn("skip unreadable reports root", zap.String("root", root), zap.Error(err))
			}
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, lockFilePrefix) {
				continue
			}
			if ok, _ := filepath.Match(pattern, name); !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			files = append(files, models.ReportFile{
				Path:  filepath.Join(root, name),
				Name:  name,
				Type:  t,
				Owner: Owner(name, t),
			})
		}
	}

	return files
}

// SortByName orders files lexicographically by filename.
func SortByName(files []models.ReportFile) []models.ReportFile {
	sorted := make([]models.ReportFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
