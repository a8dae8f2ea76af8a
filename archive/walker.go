// Package archive reads stylesheets packed into zip based containers such as
// EPUB or plain zip files.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/h2non/filetype"
)

// Container kinds reported by Detect.
const (
	KindEPUB = "epub"
	KindZip  = "zip"
)

// WalkFunc is called for every entry visited by Walk with entry name and its
// uncompressed content. If an error is returned, processing stops.
type WalkFunc func(name string, data []byte) error

// header is how much of the file content sniffing needs.
const header = 262

// Detect returns kind of zip based container stored in file, empty string
// when file is not a container.
func Detect(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, header)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	head = head[:n]

	switch {
	case filetype.Is(head, KindEPUB):
		return KindEPUB, nil
	case filetype.Is(head, KindZip):
		return KindZip, nil
	}
	return "", nil
}

// Walk calls walkFn for every regular entry under prefix which is accepted by
// match, in archive order. Entries with absolute paths or ".." components make
// Walk fail before any entry is visited.
func Walk(archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		if match != nil && !match(path.Base(f.Name)) {
			continue
		}
		files = append(files, f)
	}

	for _, f := range files {
		data, err := read(f)
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", f.Name, err)
		}
		if err := walkFn(f.Name, data); err != nil {
			return err
		}
	}
	return nil
}

func read(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || (len(name) > 1 && name[1] == ':') {
		return false
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}
