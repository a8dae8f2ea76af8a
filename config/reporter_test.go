package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()

	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}

	stored := filepath.Join(dir, "stored.css")
	if err := os.WriteFile(stored, []byte("a{}"), 0644); err != nil {
		t.Fatal(err)
	}
	copied := filepath.Join(dir, "copied.css")
	if err := os.WriteFile(copied, []byte("before"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("stored.css", stored)
	r.StoreData("config/actual.yaml", []byte("version: 1\n"))
	if err := r.StoreCopy("copied.css", copied); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	if err := r.StoreCopy("copied.css", copied); err != nil {
		t.Fatalf("StoreCopy() repeated error = %v", err)
	}
	temps := append([]string(nil), r.temps...)

	// copy must not see later changes
	if err := os.WriteFile(copied, []byte("after"), 0644); err != nil {
		t.Fatal(err)
	}
	r.Store("missing", filepath.Join(dir, "does-not-exist"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if _, ok := files["MANIFEST"]; !ok {
		t.Error("MANIFEST is missing")
	}
	if files["stored.css"] != "a{}" {
		t.Errorf("stored.css = %q", files["stored.css"])
	}
	if files["config/actual.yaml"] != "version: 1\n" {
		t.Errorf("config/actual.yaml = %q", files["config/actual.yaml"])
	}
	if files["copied.css"] != "before" {
		t.Errorf("copied.css = %q, want content at the time of the copy", files["copied.css"])
	}
	if _, ok := files["missing"]; ok {
		t.Error("absent file must be skipped")
	}
	if len(files) != 5 {
		t.Errorf("expected 5 archive entries, got %d", len(files))
	}

	for _, name := range temps {
		if _, err := os.Stat(name); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s was not removed", name)
		}
	}
}

func TestReport_OverwritePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("x", []byte("1"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on repeated StoreData")
		}
	}()
	r.StoreData("x", []byte("2"))
}

func TestReport_Nil(t *testing.T) {
	var r *Report

	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReport_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
