package storage

import (
	"archive/zip"
	"fmt"
	"io"
)

// WriteZip streams the named stored files into a deflated ZIP archive.
// Missing files are skipped; the number of archived files is returned.
func (s *LocalStorage) WriteZip(w io.Writer, names []string) (int, error) {
	zw := zip.NewWriter(w)
	written := 0
	for _, name := range names {
		file, err := s.Open(name)
		if err != nil {
			continue
		}
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		if info, err := file.Stat(); err == nil {
			header.Modified = info.ModTime()
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			_ = file.Close()
			return written, fmt.Errorf("add %s to archive: %w", name, err)
		}
		if _, err := io.Copy(entry, file); err != nil {
			_ = file.Close()
			return written, fmt.Errorf("copy %s into archive: %w", name, err)
		}
		_ = file.Close()
		written++
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("finalize archive: %w", err)
	}
	return written, nil
}
