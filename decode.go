package musicxml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/logicossoftware/go-musicxml/archive"
)

// IsContainer reports whether the file at path starts with the archive
// local header signature. Any error reading the file yields false.
func IsContainer(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var head [4]byte
	if _, err := io.ReadFull(f, head[:]); err != nil {
		return false
	}
	return IsContainerBytes(head[:])
}

// IsContainerBytes reports whether b starts with the archive local header
// signature.
func IsContainerBytes(b []byte) bool {
	return bytes.HasPrefix(b, containerMagic)
}

// DetectFormat reports how the file at path is stored. Containers, zstd and
// lz4 streams are recognized by their magic number; brotli streams, which
// have none, by a ".br" extension. Everything else is FormatPlain.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatPlain, err
	}
	defer f.Close()
	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatPlain, err
	}
	return detectFormat(path, head[:n]), nil
}

func detectFormat(name string, head []byte) Format {
	switch {
	case IsContainerBytes(head):
		return FormatContainer
	case bytes.HasPrefix(head, zstdMagic):
		return FormatZstd
	case bytes.HasPrefix(head, lz4Magic):
		return FormatLZ4
	case strings.EqualFold(filepath.Ext(name), ".br"):
		return FormatBrotli
	default:
		return FormatPlain
	}
}

// ReadFile reads the document at path, which may be a container, a plain
// document or a stream-compressed plain document, and parses it.
//
// For a container the score is the entry named by the full-path attribute of
// the first rootfile in META-INF/container.xml. ReadFile returns
// ErrMissingContainer when that entry does not exist, ErrMissingRootfile when
// it names no score, and an error wrapping archive.ErrNotFound when the named
// score entry is absent.
func ReadFile(path string, opts ...ReadOption) (*Element, error) {
	cfg := newReadConfig(opts)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if fi, err := f.Stat(); err == nil && fi.Mode().IsRegular() && fi.Size() > cfg.limits.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrLimitExceeded, path, fi.Size())
	}
	data, err := readInput(f, cfg.limits.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if !cfg.forced {
		cfg.format = detectFormat(path, data)
	}
	return decodeBytes(data, cfg)
}

// Decode reads a whole document from r and parses it. The format is sniffed
// from the leading bytes unless [WithFormat] is given.
func Decode(r io.Reader, opts ...ReadOption) (*Element, error) {
	cfg := newReadConfig(opts)
	data, err := readInput(r, cfg.limits.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if !cfg.forced {
		cfg.format = detectFormat("", data)
	}
	return decodeBytes(data, cfg)
}

// ReadPartwise reads the document at path and returns it in the partwise
// layout, converting a timewise score if needed.
func ReadPartwise(path string, opts ...ReadOption) (*Element, error) {
	root, err := ReadFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return ToPartwise(root)
}

// ReadTimewise is like ReadPartwise for the timewise layout.
func ReadTimewise(path string, opts ...ReadOption) (*Element, error) {
	root, err := ReadFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return ToTimewise(root)
}

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}

func readInput(r io.Reader, limit int64) ([]byte, error) {
	data, err := readAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: input larger than %d bytes", ErrLimitExceeded, limit)
	}
	return data, nil
}

func decodeBytes(data []byte, cfg readConfig) (*Element, error) {
	if cfg.format == FormatContainer {
		return readContainer(data, cfg)
	}
	plain, err := decompressStream(cfg.format, data, cfg.limits.MaxEntrySize)
	if err != nil {
		return nil, err
	}
	text, err := archive.DecodeText(plain)
	if err != nil {
		return nil, err
	}
	return Parse(text, WithMaxDepth(cfg.limits.MaxDepth))
}

func readContainer(data []byte, cfg readConfig) (*Element, error) {
	opts := []archive.ReadOption{archive.WithReadLimits(archive.Limits{MaxEntrySize: cfg.limits.MaxEntrySize})}
	if len(cfg.methods) > 0 {
		opts = append(opts, archive.WithMethods(cfg.methods...))
	}
	zr, err := archive.Open(data, opts...)
	if err != nil {
		return nil, err
	}

	pointer, err := entryText(zr, ContainerPath)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMissingContainer, ContainerPath)
	}
	if err != nil {
		return nil, err
	}
	container, err := Parse(pointer, WithMaxDepth(cfg.limits.MaxDepth))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ContainerPath, err)
	}
	path, err := rootfilePath(container)
	if err != nil {
		return nil, err
	}

	text, err := entryText(zr, path)
	if err != nil {
		return nil, fmt.Errorf("rootfile: %w", err)
	}
	root, err := Parse(text, WithMaxDepth(cfg.limits.MaxDepth))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// entryText reads a container entry, reporting an oversized entry as
// ErrLimitExceeded as well as archive.ErrLimitExceeded.
func entryText(zr *archive.Reader, name string) (string, error) {
	s, err := zr.ReadText(name)
	if errors.Is(err, archive.ErrLimitExceeded) {
		return "", fmt.Errorf("%w: %w", ErrLimitExceeded, err)
	}
	return s, err
}

// rootfilePath returns the full-path of the first rootfile declared in a
// parsed container.xml.
func rootfilePath(container *Element) (string, error) {
	rf := container.Find("rootfiles", "rootfile")
	if rf == nil {
		return "", fmt.Errorf("%w: no rootfiles/rootfile element", ErrMissingRootfile)
	}
	p, ok := rf.Attr("full-path")
	if !ok || p == "" {
		return "", fmt.Errorf("%w: rootfile has no full-path", ErrMissingRootfile)
	}
	return p, nil
}
