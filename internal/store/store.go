// Package store keeps uploaded images, their processing results and exported
// pattern images in a single directory.
//
// Layout inside the upload directory:
//
//	<stem>_<timestamp>_<id>.<ext>      uploaded image
//	<stem>_<timestamp>_<id>.json.zst   zstd-compressed processing result
//	exports/<stem>_..._pattern_<n>.png exported pattern images
//
// Filenames handed to the store must be bare names; anything containing a
// path separator is rejected.
package store

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/pixlator/internal/imaging"
	"github.com/ironsheep/pixlator/internal/pattern"
)

// ErrNotFound is returned when a requested upload or result does not exist.
var ErrNotFound = errors.New("not found")

// AllowedExtensions lists the upload extensions the store accepts.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

const (
	resultSuffix = ".json.zst"
	exportDir    = "exports"
)

// Store manages files under one directory. It is safe for concurrent use as
// long as callers do not write the same filename concurrently.
type Store struct {
	dir         string
	maxFileSize int64
	now         func() time.Time
}

// New opens (and creates if needed) a store rooted at dir.
func New(dir string, maxFileSize int64) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, exportDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: abs, maxFileSize: maxFileSize, now: time.Now}, nil
}

// Dir returns the absolute upload directory.
func (s *Store) Dir() string { return s.dir }

// FileInfo describes a saved upload.
type FileInfo struct {
	Filename         string                   `json:"filename"`
	OriginalFilename string                   `json:"original_filename"`
	FileSize         int64                    `json:"file_size"`
	Dimensions       imaging.DimensionsResult `json:"dimensions"`
	UploadTime       time.Time                `json:"upload_time"`
}

func allowedExtension(ext string) bool {
	return slices.Contains(AllowedExtensions, strings.ToLower(ext))
}

// GenerateFilename builds a unique name of the form
// <stem>_<YYYYmmdd_HHMMSS>_<8 hex digits><ext>.
func (s *Store) GenerateFilename(original string) (string, error) {
	base := filepath.Base(original)
	ext := strings.ToLower(filepath.Ext(base))
	if !allowedExtension(ext) {
		return "", fmt.Errorf("%w: unsupported file extension %q (allowed: %s)", pattern.ErrInvalidParams, ext, strings.Join(AllowedExtensions, ", "))
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var id [4]byte
	if _, err := rand.Read(id[:]); err != nil {
		return "", fmt.Errorf("failed to generate file id: %w", err)
	}
	return fmt.Sprintf("%s_%s_%s%s", stem, s.now().Format("20060102_150405"), hex.EncodeToString(id[:]), ext), nil
}

// SaveUpload validates and stores an uploaded image.
func (s *Store) SaveUpload(content []byte, original string) (*FileInfo, error) {
	if s.maxFileSize > 0 && int64(len(content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: file too large: %d bytes (maximum %d)", pattern.ErrInvalidParams, len(content), s.maxFileSize)
	}
	name, err := s.GenerateFilename(original)
	if err != nil {
		return nil, err
	}
	dims, _, err := imaging.DecodeDimensions(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(filepath.Join(s.dir, name), content); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	log.Printf("File saved: %s (%d bytes, %dx%d)", name, len(content), dims.Width, dims.Height)

	return &FileInfo{
		Filename:         name,
		OriginalFilename: filepath.Base(original),
		FileSize:         int64(len(content)),
		Dimensions:       *dims,
		UploadTime:       s.now(),
	}, nil
}

// Path returns the absolute path of an upload, or ErrNotFound.
func (s *Store) Path(filename string) (string, error) {
	if err := validateName(filename); err != nil {
		return "", err
	}
	p := filepath.Join(s.dir, filename)
	st, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && st.IsDir()) {
		return "", fmt.Errorf("%s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return p, nil
}

func validateName(filename string) error {
	if filename == "" || filename == "." || filename == ".." ||
		filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("%w: invalid filename %q", pattern.ErrInvalidParams, filename)
	}
	return nil
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

func (s *Store) resultPath(filename string) string {
	return filepath.Join(s.dir, stem(filename)+resultSuffix)
}

// writeFileAtomic writes data to a temporary file and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Metadata is attached to every saved result.
type Metadata struct {
	SavedTime        time.Time `json:"saved_time"`
	OriginalFilename string    `json:"original_filename"`
}

// SavedResult is a processing result as persisted on disk.
type SavedResult struct {
	pattern.Result
	Metadata Metadata `json:"metadata"`
}

// SaveResult persists res for the given upload, replacing any earlier result.
func (s *Store) SaveResult(filename string, res *pattern.Result) (string, error) {
	if _, err := s.Path(filename); err != nil {
		return "", err
	}
	saved := SavedResult{
		Result:   *res,
		Metadata: Metadata{SavedTime: s.now(), OriginalFilename: filename},
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return "", fmt.Errorf("zstd encode: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(&saved); err != nil {
		enc.Close()
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("zstd encode: %w", err)
	}

	p := s.resultPath(filename)
	if err := writeFileAtomic(p, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to save result: %w", err)
	}
	log.Printf("Processing result saved: %s", filepath.Base(p))
	return p, nil
}

// LoadResult reads the saved result of an upload.
func (s *Store) LoadResult(filename string) (*SavedResult, error) {
	if err := validateName(filename); err != nil {
		return nil, err
	}
	f, err := os.Open(s.resultPath(filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("result for %s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Close()

	var saved SavedResult
	if err := json.NewDecoder(dec).Decode(&saved); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &saved, nil
}

// HistoryEntry describes one upload in the history listing.
type HistoryEntry struct {
	Filename            string                   `json:"filename"`
	UploadTime          time.Time                `json:"upload_time"`
	FileSize            int64                    `json:"file_size"`
	Dimensions          imaging.DimensionsResult `json:"dimensions"`
	HasProcessingResult bool                     `json:"has_processing_result"`
}

// History lists every upload, newest first.
func (s *Store) History() ([]HistoryEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload dir: %w", err)
	}

	history := []HistoryEntry{}
	for _, e := range entries {
		if !e.Type().IsRegular() || !allowedExtension(filepath.Ext(e.Name())) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		entry := HistoryEntry{
			Filename:   e.Name(),
			UploadTime: info.ModTime(),
			FileSize:   info.Size(),
		}
		if dims, err := readDimensions(filepath.Join(s.dir, e.Name())); err == nil {
			entry.Dimensions = *dims
		}
		if _, err := os.Stat(s.resultPath(e.Name())); err == nil {
			entry.HasProcessingResult = true
		}
		history = append(history, entry)
	}

	slices.SortStableFunc(history, func(a, b HistoryEntry) int {
		if c := b.UploadTime.Compare(a.UploadTime); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
	return history, nil
}

func readDimensions(path string) (*imaging.DimensionsResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dims, _, err := imaging.DecodeDimensions(f)
	return dims, err
}

// Delete removes an upload together with its result and exports.
func (s *Store) Delete(filename string) error {
	p, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}
	if err := os.Remove(s.resultPath(filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete result of %s: %w", filename, err)
	}
	exports, _ := filepath.Glob(filepath.Join(s.dir, exportDir, globEscape(stem(filename))+"_pattern_*"))
	for _, e := range exports {
		if err := os.Remove(e); err != nil {
			return fmt.Errorf("failed to delete export %s: %w", filepath.Base(e), err)
		}
	}
	log.Printf("Deleted file: %s", filename)
	return nil
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}

// Stats summarizes the store contents.
type Stats struct {
	TotalFiles     int    `json:"total_files"`
	TotalSize      int64  `json:"total_size"`
	ProcessedFiles int    `json:"processed_files"`
	UploadDir      string `json:"upload_dir"`
}

// Stats computes totals over History.
func (s *Store) Stats() (*Stats, error) {
	history, err := s.History()
	if err != nil {
		return nil, err
	}
	st := &Stats{TotalFiles: len(history), UploadDir: s.dir}
	for _, h := range history {
		st.TotalSize += h.FileSize
		if h.HasProcessingResult {
			st.ProcessedFiles++
		}
	}
	return st, nil
}

// Cleanup deletes files older than retention and returns how many were
// removed. A non-positive retention disables cleanup.
func (s *Store) Cleanup(retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention)
	deleted := 0
	for _, dir := range []string{s.dir, filepath.Join(s.dir, exportDir)} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return deleted, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				log.Printf("Error deleting old file %s: %v", e.Name(), err)
				continue
			}
			deleted++
		}
	}
	log.Printf("Cleanup completed: %d files deleted", deleted)
	return deleted, nil
}

// ExportInfo describes a saved export image.
type ExportInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	FileSize int64  `json:"file_size"`
}

// SaveExport stores an encoded export image for an upload. format is "png" or
// "jpeg". A non-empty variant is appended to the name so that differently
// cropped exports at the same pixel size do not overwrite each other.
func (s *Store) SaveExport(filename string, pixelSize int, variant, format string, data []byte) (*ExportInfo, error) {
	if _, err := s.Path(filename); err != nil {
		return nil, err
	}
	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s_pattern_%d", stem(filename), pixelSize)
	if variant != "" {
		if strings.ContainsAny(variant, `/\`) {
			return nil, fmt.Errorf("%w: invalid export variant %q", pattern.ErrInvalidParams, variant)
		}
		name += "_" + variant
	}
	name += ext
	p := filepath.Join(s.dir, exportDir, name)
	if err := writeFileAtomic(p, data); err != nil {
		return nil, fmt.Errorf("failed to save export: %w", err)
	}
	log.Printf("Export completed: %s -> %s", filename, name)
	return &ExportInfo{Filename: name, Path: p, FileSize: int64(len(data))}, nil
}
