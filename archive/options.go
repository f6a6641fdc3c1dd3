package archive

import (
	"time"

	"github.com/klauspost/compress/flate"
)

// Limits bounds the resources a Reader will spend on one archive.
// Zero fields take the package defaults.
type Limits struct {
	MaxEntries   int
	MaxEntrySize uint64 // uncompressed bytes
}

func defaultLimits() Limits {
	return Limits{
		MaxEntries:   uint16Max,
		MaxEntrySize: 256 << 20, // 256 MiB
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxEntries == 0 {
		l.MaxEntries = d.MaxEntries
	}
	if l.MaxEntrySize == 0 {
		l.MaxEntrySize = d.MaxEntrySize
	}
	return l
}

type readConfig struct {
	limits  Limits
	methods map[Method]bool
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithMethods replaces the set of compression methods kept in the index.
// Entries using any other method are silently left out. The default set is
// Deflate only.
func WithMethods(methods ...Method) ReadOption {
	return func(c *readConfig) {
		c.methods = make(map[Method]bool, len(methods))
		for _, m := range methods {
			c.methods[m] = true
		}
	}
}

type writeConfig struct {
	method   Method
	level    int
	modified time.Time
}

type WriteOption func(*writeConfig)

// WithMethod selects the compression method for every entry.
func WithMethod(m Method) WriteOption {
	return func(c *writeConfig) { c.method = m }
}

// WithLevel sets the compression level. For Deflate it is passed to the
// encoder as-is; for Zstd it is interpreted as a zstd level.
func WithLevel(level int) WriteOption {
	return func(c *writeConfig) { c.level = level }
}

// WithModified sets the modification time stamped on every entry.
func WithModified(t time.Time) WriteOption {
	return func(c *writeConfig) { c.modified = t }
}

func defaultWriteConfig() writeConfig {
	return writeConfig{
		method:   Deflate,
		level:    flate.BestCompression,
		modified: now(),
	}
}
