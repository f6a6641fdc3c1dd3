package musicxml

import (
	"time"

	"github.com/logicossoftware/go-musicxml/archive"
)

type parseConfig struct {
	maxDepth int
}

type ParseOption func(*parseConfig)

// WithMaxDepth bounds element nesting. Zero or less restores the default.
func WithMaxDepth(n int) ParseOption {
	return func(c *parseConfig) { c.maxDepth = n }
}

type readConfig struct {
	limits  Limits
	methods []archive.Method
	format  Format
	forced  bool
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithArchiveMethods sets the compression methods accepted inside a
// container. Deflate alone is accepted by default.
func WithArchiveMethods(methods ...archive.Method) ReadOption {
	return func(c *readConfig) { c.methods = methods }
}

// WithFormat skips format detection and decodes input as f. It is needed
// for brotli streams, which carry no magic number.
func WithFormat(f Format) ReadOption {
	return func(c *readConfig) { c.format, c.forced = f, true }
}

type writeConfig struct {
	limits      Limits
	style       Style
	declaration bool
	rootPath    string
	compression Compression
	method      archive.Method
	level       int
	modified    time.Time
}

type WriteOption func(*writeConfig)

// WithWriteLimits sets the limits checked before writing. Only MaxDepth
// applies.
func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}

// WithStyle selects the layout of the rendered document. Indented is the
// default.
func WithStyle(s Style) WriteOption {
	return func(c *writeConfig) { c.style = s }
}

// WithDeclaration controls whether the XML declaration and, for score
// roots, the DOCTYPE line are written ahead of the document.
func WithDeclaration(v bool) WriteOption {
	return func(c *writeConfig) { c.declaration = v }
}

// WithRootPath names the container entry that holds the score.
func WithRootPath(p string) WriteOption {
	return func(c *writeConfig) { c.rootPath = p }
}

// WithStreamCompression compresses an uncompressed (non-container) document
// as a whole. It has no effect when writing a container.
func WithStreamCompression(comp Compression) WriteOption {
	return func(c *writeConfig) { c.compression = comp }
}

func WithArchiveMethod(m archive.Method) WriteOption {
	return func(c *writeConfig) { c.method = m }
}

func WithCompressionLevel(level int) WriteOption {
	return func(c *writeConfig) { c.level = level }
}

// WithModified sets the timestamp recorded on container entries.
func WithModified(t time.Time) WriteOption {
	return func(c *writeConfig) { c.modified = t }
}
