package process

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"cssnorm/config"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return cfg
}

func newTestNormalizer(t *testing.T, cfg *config.Config, passes ...string) *Normalizer {
	t.Helper()
	if len(passes) == 0 {
		passes = cfg.Normalize.Passes
	}
	n, err := NewNormalizer(cfg, passes, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}
	return n
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		forced   string
		want     string
		wantName string
	}{
		{"plain", []byte("a{}"), "", "a{}", "UTF-8"},
		{"utf-8 bom", []byte("\xef\xbb\xbfa{}"), "", "a{}", "UTF-8"},
		{"utf-16le bom", []byte("\xff\xfea\x00{\x00}\x00"), "", "a{}", "UTF-16LE"},
		{"charset rule", []byte("@charset \"windows-1251\";b{content:\"\xcf\"}"), "", "@charset \"windows-1251\";b{content:\"П\"}", "windows-1251"},
		{"forced", []byte("b{content:\"\xcf\"}"), "windows-1251", "b{content:\"П\"}", "windows-1251"},
		{"forced utf-8", []byte("b{}"), "utf-8", "b{}", "UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, name, err := decode(tt.data, tt.forced)
			if err != nil {
				t.Fatalf("decode() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("decode() = %q, want %q", got, tt.want)
			}
			if name != tt.wantName {
				t.Errorf("decode() charset = %q, want %q", name, tt.wantName)
			}
		})
	}

	if _, _, err := decode([]byte("a{}"), "no-such-charset"); err == nil {
		t.Error("expected error for unknown charset")
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer(t, defaultConfig(t))

	sheet, stats, err := n.Normalize([]byte("@charset \"windows-1251\";\na:before{content:\"\xcf\";margin:0 auto}"), "test.css")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(stats) != 3 {
		t.Errorf("expected stats of 3 passes, got %v", stats)
	}

	want := `@charset "UTF-8";
a:before {
  content: "П";
  margin-top: 0px;
  margin-right: auto;
  margin-bottom: 0px;
  margin-left: auto;
}
`
	if got := sheet.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestNewNormalizer_Errors(t *testing.T) {
	cfg := defaultConfig(t)
	if _, err := NewNormalizer(cfg, nil, nil, nil, nil); err == nil {
		t.Error("expected error without passes")
	}
	if _, err := NewNormalizer(cfg, []string{"explode", "minify"}, nil, nil, nil); err == nil {
		t.Error("expected error for unknown pass")
	}
}

func TestNormalizer_IgnoreMerged(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Normalize.Units.Ignore = []string{"padding"}

	n, err := NewNormalizer(cfg, []string{"units"}, []string{"MARGIN"}, nil, nil)
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}
	sheet, _, err := n.Normalize([]byte("a{margin:0;padding:0;width:0}"), "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	want := "a {\n  margin: 0;\n  padding: 0;\n  width: 0px;\n}\n"
	if got := sheet.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestNormalizer_ProcessFileToStdout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.css")
	writeFile(t, src, "a{transition:opacity 1s}")

	cfg := defaultConfig(t)
	cfg.Output.Indent = "\t"
	n := newTestNormalizer(t, cfg, "defaults")

	var out bytes.Buffer
	if err := n.Process(context.Background(), src, "", &out); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if want := "a {\n\ttransition: opacity 1s ease 0s;\n}\n"; out.String() != want {
		t.Errorf("unexpected output %q, want %q", out.String(), want)
	}
}

func TestNormalizer_ProcessFileToDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "a.css")
	writeFile(t, src, "a{margin:1px 2px}")
	dst := filepath.Join(dir, "out")
	if err := os.MkdirAll(dst, 0755); err != nil {
		t.Fatal(err)
	}

	n := newTestNormalizer(t, defaultConfig(t), "explode")
	if err := n.Process(context.Background(), src, dst, nil); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "a.css"))
	if err != nil {
		t.Fatalf("output was not written: %v", err)
	}
	if !strings.Contains(string(data), "margin-left: 2px;") {
		t.Errorf("unexpected output:\n%s", data)
	}

	// second run must not replace existing output
	if err := n.Process(context.Background(), src, dst, nil); err == nil {
		t.Error("expected error for existing output without overwrite")
	}
}

func TestNormalizer_ProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writeFile(t, filepath.Join(in, "a.css"), "a{margin:0}")
	writeFile(t, filepath.Join(in, "sub", "b.CSS"), "b{flex:1}")
	writeFile(t, filepath.Join(in, "notes.txt"), "margin:0")
	out := filepath.Join(dir, "out")

	cfg := defaultConfig(t)
	cfg.Output.Extension = ".norm.css"
	n := newTestNormalizer(t, cfg)

	if err := n.Process(context.Background(), in, out, nil); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	a, err := os.ReadFile(filepath.Join(out, "a.norm.css"))
	if err != nil {
		t.Fatalf("a.norm.css was not written: %v", err)
	}
	if !strings.Contains(string(a), "margin-top: 0px;") {
		t.Errorf("unexpected a.norm.css:\n%s", a)
	}
	b, err := os.ReadFile(filepath.Join(out, "sub", "b.norm.css"))
	if err != nil {
		t.Fatalf("sub/b.norm.css was not written: %v", err)
	}
	if !strings.Contains(string(b), "flex: 1 1 0%;") {
		t.Errorf("unexpected b.norm.css:\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(out, "notes.txt")); !os.IsNotExist(err) {
		t.Error("non stylesheet files must be skipped")
	}
}

func TestNormalizer_ProcessDirectoryPartialFailure(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(in, "a.css"), "a{margin:0}")
	writeFile(t, filepath.Join(in, "b.css"), "b{margin:0}")
	writeFile(t, filepath.Join(out, "a.css"), "existing")

	n := newTestNormalizer(t, defaultConfig(t))
	err := n.Process(context.Background(), in, out, nil)
	if err == nil {
		t.Fatal("expected error for existing output")
	}
	if !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Errorf("unexpected error: %v", err)
	}

	if data, _ := os.ReadFile(filepath.Join(out, "a.css")); string(data) != "existing" {
		t.Error("existing output must be kept")
	}
	if _, err := os.Stat(filepath.Join(out, "b.css")); err != nil {
		t.Errorf("remaining files must be processed: %v", err)
	}
}

func TestNormalizer_ProcessErrors(t *testing.T) {
	dir := t.TempDir()
	n := newTestNormalizer(t, defaultConfig(t))

	if err := n.Process(context.Background(), filepath.Join(dir, "missing.css"), "", nil); err == nil {
		t.Error("expected error for missing source")
	}
	if err := n.Process(context.Background(), dir, "", nil); err == nil {
		t.Error("expected error for directory without destination")
	}

	src := filepath.Join(dir, "a.css")
	writeFile(t, src, "a{}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Process(ctx, src, "", &bytes.Buffer{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestNormalizer_OutputName(t *testing.T) {
	cfg := defaultConfig(t)
	if got := newTestNormalizer(t, cfg).OutputName("a/b.css"); got != "a/b.css" {
		t.Errorf("OutputName() without extension = %q", got)
	}

	cfg.Output.Extension = ".min.css"
	n := newTestNormalizer(t, cfg)
	tests := map[string]string{
		"a/b.css": "a/b.min.css",
		"B.CSS":   "B.min.css",
		"c.less":  "c.min.css",
	}
	for in, want := range tests {
		if got := n.OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNormalizer_ProcessArchive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "book.epub")
	writeZip(t, src, map[string]string{
		"mimetype":              "application/epub+zip",
		"OEBPS/styles/main.css": "p{margin:0 1em}",
		"OEBPS/text/ch1.xhtml":  "<html/>",
	})
	out := filepath.Join(dir, "out")

	n := newTestNormalizer(t, defaultConfig(t))
	if err := n.Process(context.Background(), src, out, nil); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "OEBPS", "styles", "main.css"))
	if err != nil {
		t.Fatalf("stylesheet was not extracted: %v", err)
	}
	want := "p {\n  margin-top: 0px;\n  margin-right: 1em;\n  margin-bottom: 0px;\n  margin-left: 1em;\n}\n"
	if string(data) != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", data, want)
	}
	if _, err := os.Stat(filepath.Join(out, "OEBPS", "text", "ch1.xhtml")); !os.IsNotExist(err) {
		t.Error("non stylesheet entries must be skipped")
	}

	if err := n.Process(context.Background(), src, "", nil); err == nil {
		t.Error("expected error for archive without destination")
	}
}

func TestNormalizer_DebugReport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writeFile(t, filepath.Join(in, "a", "x.css"), "a{margin:0}")
	writeFile(t, filepath.Join(in, "b", "x.css"), "b{padding:0}")

	cfg := defaultConfig(t)
	cfg.Reporting.Destination = filepath.Join(dir, "report.zip")
	rpt, err := cfg.Reporting.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	n, err := NewNormalizer(cfg, cfg.Normalize.Passes, nil, rpt, zap.NewNop())
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}
	if err := n.Process(context.Background(), in, filepath.Join(dir, "out"), nil); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(cfg.Reporting.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, name := range []string{"tree/001-x.css.txt", "tree/002-x.css.txt"} {
		if !names[name] {
			t.Errorf("report is missing %s, has %v", name, names)
		}
	}
}
