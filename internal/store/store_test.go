package store

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/pixlator/internal/pattern"
)

// newTestStore creates a store in a temp dir with a fixed clock.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), 1024*1024)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }
	return s
}

// pngBytes encodes a solid image as PNG.
func pngBytes(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// testResult builds a small real result.
func testResult(t *testing.T) *pattern.Result {
	t.Helper()
	r, err := pattern.NewRaster(2, 1, []pattern.RGB{{R: 255}, {B: 255}})
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	res, err := pattern.NewProcessor(nil, pattern.DefaultSeed).ProcessRaster(r, pattern.Params{MaxSize: 2})
	if err != nil {
		t.Fatalf("ProcessRaster failed: %v", err)
	}
	return res
}

func TestGenerateFilename(t *testing.T) {
	s := newTestStore(t)

	name, err := s.GenerateFilename("holiday photo.PNG")
	if err != nil {
		t.Fatalf("GenerateFilename failed: %v", err)
	}
	if !regexp.MustCompile(`^holiday photo_20240305_143000_[0-9a-f]{8}\.png$`).MatchString(name) {
		t.Errorf("unexpected name %q", name)
	}

	other, _ := s.GenerateFilename("holiday photo.PNG")
	if other == name {
		t.Error("two generated names collided")
	}

	for _, bad := range []string{"doc.pdf", "noext", "image.tiff"} {
		if _, err := s.GenerateFilename(bad); err == nil {
			t.Errorf("GenerateFilename(%q) should fail", bad)
		}
	}
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)

	info, err := s.SaveUpload(pngBytes(t, 30, 20, color.White), "cat.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if info.Dimensions.Width != 30 || info.Dimensions.Height != 20 {
		t.Errorf("dimensions: got %+v", info.Dimensions)
	}
	if info.OriginalFilename != "cat.png" || info.FileSize <= 0 {
		t.Errorf("unexpected info %+v", info)
	}
	p, err := s.Path(info.Filename)
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if filepath.Dir(p) != s.Dir() {
		t.Errorf("upload stored in %s, want %s", filepath.Dir(p), s.Dir())
	}
}

func TestSaveUpload_Rejects(t *testing.T) {
	s := newTestStore(t)
	s.maxFileSize = 100

	if _, err := s.SaveUpload(make([]byte, 101), "big.png"); !errors.Is(err, pattern.ErrInvalidParams) {
		t.Errorf("oversized upload: expected ErrInvalidParams, got %v", err)
	}
	if _, err := s.SaveUpload([]byte("not an image"), "fake.png"); err == nil {
		t.Error("undecodable upload should fail")
	}
	if _, err := s.SaveUpload([]byte("x"), "notes.txt"); !errors.Is(err, pattern.ErrInvalidParams) {
		t.Errorf("unsupported extension: expected ErrInvalidParams, got %v", err)
	}
}

func TestPath_Invalid(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Path("missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.png"} {
		if _, err := s.Path(name); !errors.Is(err, pattern.ErrInvalidParams) || errors.Is(err, ErrNotFound) {
			t.Errorf("Path(%q): expected invalid filename error, got %v", name, err)
		}
	}
}

func TestSaveLoadResult(t *testing.T) {
	s := newTestStore(t)
	info, err := s.SaveUpload(pngBytes(t, 2, 1, color.Black), "tiny.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}

	res := testResult(t)
	if _, err := s.SaveResult(info.Filename, res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	loaded, err := s.LoadResult(info.Filename)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}
	if diff := cmp.Diff(*res, loaded.Result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if loaded.Metadata.OriginalFilename != info.Filename || !loaded.Metadata.SavedTime.Equal(s.now()) {
		t.Errorf("metadata: got %+v", loaded.Metadata)
	}
}

func TestLoadResult_Missing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadResult("nothing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.SaveResult("nothing.png", testResult(t)); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveResult without upload: expected ErrNotFound, got %v", err)
	}
}

func TestHistoryAndStats(t *testing.T) {
	s := newTestStore(t)
	first, err := s.SaveUpload(pngBytes(t, 4, 4, color.White), "first.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	second, err := s.SaveUpload(pngBytes(t, 8, 2, color.Black), "second.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if _, err := s.SaveResult(second.Filename, testResult(t)); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if _, err := s.SaveExport(second.Filename, 10, "", "png", []byte("png")); err != nil {
		t.Fatalf("SaveExport failed: %v", err)
	}

	old := time.Now().Add(-time.Hour)
	os.Chtimes(filepath.Join(s.Dir(), first.Filename), old, old)

	history, err := s.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("History: got %d entries, want 2", len(history))
	}
	if history[0].Filename != second.Filename || history[1].Filename != first.Filename {
		t.Errorf("History order: got %s, %s", history[0].Filename, history[1].Filename)
	}
	if !history[0].HasProcessingResult || history[1].HasProcessingResult {
		t.Error("HasProcessingResult flags wrong")
	}
	if history[0].Dimensions.Width != 8 || history[0].Dimensions.Height != 2 {
		t.Errorf("dimensions: got %+v", history[0].Dimensions)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.TotalFiles != 2 || st.ProcessedFiles != 1 || st.TotalSize != first.FileSize+second.FileSize {
		t.Errorf("Stats: got %+v", st)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	info, err := s.SaveUpload(pngBytes(t, 2, 1, color.White), "gone.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if _, err := s.SaveResult(info.Filename, testResult(t)); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	exp, err := s.SaveExport(info.Filename, 4, "", "jpeg", []byte("jpg"))
	if err != nil {
		t.Fatalf("SaveExport failed: %v", err)
	}
	if filepath.Ext(exp.Filename) != ".jpg" {
		t.Errorf("export name: got %s", exp.Filename)
	}

	if err := s.Delete(info.Filename); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Path(info.Filename); !errors.Is(err, ErrNotFound) {
		t.Error("upload still present")
	}
	if _, err := s.LoadResult(info.Filename); !errors.Is(err, ErrNotFound) {
		t.Error("result still present")
	}
	if _, err := os.Stat(exp.Path); !os.IsNotExist(err) {
		t.Error("export still present")
	}

	if err := s.Delete(info.Filename); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
}

func TestCleanup(t *testing.T) {
	s := newTestStore(t)
	s.now = time.Now
	oldInfo, err := s.SaveUpload(pngBytes(t, 2, 2, color.White), "old.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	newInfo, err := s.SaveUpload(pngBytes(t, 2, 2, color.Black), "new.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	exp, err := s.SaveExport(oldInfo.Filename, 2, "", "png", []byte("x"))
	if err != nil {
		t.Fatalf("SaveExport failed: %v", err)
	}

	old := time.Now().Add(-10 * 24 * time.Hour)
	os.Chtimes(filepath.Join(s.Dir(), oldInfo.Filename), old, old)
	os.Chtimes(exp.Path, old, old)

	if n, _ := s.Cleanup(0); n != 0 {
		t.Errorf("Cleanup(0) deleted %d files", n)
	}

	n, err := s.Cleanup(7 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Cleanup: deleted %d files, want 2", n)
	}
	if _, err := s.Path(newInfo.Filename); err != nil {
		t.Errorf("recent upload removed: %v", err)
	}
	if _, err := s.Path(oldInfo.Filename); !errors.Is(err, ErrNotFound) {
		t.Error("old upload kept")
	}
}

func TestSaveExport_Variant(t *testing.T) {
	s := newTestStore(t)
	info, err := s.SaveUpload(pngBytes(t, 2, 1, color.White), "chart.png")
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}

	whole, err := s.SaveExport(info.Filename, 8, "", "png", []byte("a"))
	if err != nil {
		t.Fatalf("SaveExport failed: %v", err)
	}
	page, err := s.SaveExport(info.Filename, 8, "0_0_1_1", "png", []byte("b"))
	if err != nil {
		t.Fatalf("SaveExport failed: %v", err)
	}
	if whole.Filename == page.Filename {
		t.Fatalf("variant export overwrote %s", whole.Filename)
	}
	if want := stem(info.Filename) + "_pattern_8_0_0_1_1.png"; page.Filename != want {
		t.Errorf("variant name: got %s, want %s", page.Filename, want)
	}

	if _, err := s.SaveExport(info.Filename, 8, "../x", "png", []byte("c")); err == nil {
		t.Error("SaveExport should reject a variant with a path separator")
	}

	// Delete removes every variant.
	if err := s.Delete(info.Filename); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, p := range []string{whole.Path, page.Path} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still present", filepath.Base(p))
		}
	}
}
