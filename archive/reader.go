package archive

import (
	"fmt"
	"hash/crc32"
)

// Reader is a read-only index over an archive held in memory.
//
// The index is built once by Open from the end of central directory record,
// which gives the authoritative directory offset and entry count. Entries
// are never located by scanning member data for signatures.
type Reader struct {
	buf     []byte
	entries []Entry
	byName  map[string]int
	limits  Limits
}

// Open indexes the archive in buf. The Reader retains buf; callers must not
// modify it afterwards.
//
// Entries compressed with a method outside the enabled set (Deflate by
// default, see [WithMethods]) and encrypted entries are left out of the index
// without error.
func Open(buf []byte, opts ...ReadOption) (*Reader, error) {
	cfg := readConfig{limits: defaultLimits(), methods: map[Method]bool{Deflate: true}}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	end, endOff, err := findEndRecord(buf)
	if err != nil {
		return nil, err
	}
	if end.DiskNumber != 0 || end.DirDisk != 0 || end.DiskEntries != end.TotalEntries {
		return nil, fmt.Errorf("%w: multi-disk archive", ErrUnsupported)
	}
	if end.TotalEntries == uint16Max || end.DirSize == uint32Max || end.DirOffset == uint32Max {
		return nil, fmt.Errorf("%w: zip64 archive", ErrUnsupported)
	}
	if int(end.TotalEntries) > cfg.limits.MaxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrLimitExceeded, end.TotalEntries)
	}
	dirStart := int64(end.DirOffset)
	dirEnd := dirStart + int64(end.DirSize)
	if dirEnd > int64(endOff) {
		return nil, fmt.Errorf("%w: central directory [%d,%d) overlaps end record at %d", ErrFormat, dirStart, dirEnd, endOff)
	}

	r := &Reader{
		buf:    buf,
		byName: make(map[string]int, end.TotalEntries),
		limits: cfg.limits,
	}
	dir := buf[dirStart:dirEnd]
	off := 0
	for i := 0; i < int(end.TotalEntries); i++ {
		ch, err := decodeCentralHeader(dir[off:])
		if err != nil {
			return nil, fmt.Errorf("directory record %d: %w", i, err)
		}
		if off+ch.size() > len(dir) {
			return nil, fmt.Errorf("%w: directory record %d exceeds directory", ErrFormat, i)
		}
		name := string(dir[off+centralHeaderLen : off+centralHeaderLen+int(ch.NameLen)])
		off += ch.size()

		if !cfg.methods[Method(ch.Method)] || ch.Flags&flagEncrypted != 0 {
			continue
		}
		e, err := r.locate(name, ch, dirStart)
		if err != nil {
			return nil, err
		}
		if j, ok := r.byName[name]; ok {
			r.entries[j] = e
			continue
		}
		r.byName[name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// locate follows a directory record to its local header and computes where
// the member's payload begins.
func (r *Reader) locate(name string, ch centralHeader, dirStart int64) (Entry, error) {
	hdrOff := int64(ch.LocalOffset)
	if hdrOff+localHeaderLen > dirStart {
		return Entry{}, fmt.Errorf("%w: %q local header offset %d out of range", ErrFormat, name, hdrOff)
	}
	lh, err := decodeLocalHeader(r.buf[hdrOff:])
	if err != nil {
		return Entry{}, fmt.Errorf("%q: %w", name, err)
	}
	dataOff := hdrOff + int64(lh.size())
	if dataOff+int64(ch.CompressedSize) > dirStart {
		return Entry{}, fmt.Errorf("%w: %q data extends past central directory", ErrFormat, name)
	}
	return Entry{
		Name:             name,
		Method:           Method(ch.Method),
		Flags:            ch.Flags,
		CRC32:            ch.CRC32,
		CompressedSize:   uint64(ch.CompressedSize),
		UncompressedSize: uint64(ch.UncompressedSize),
		Modified:         msdosToTime(ch.ModDate, ch.ModTime),
		HeaderOffset:     hdrOff,
		DataOffset:       dataOff,
	}, nil
}

// Names returns the indexed entry names in central directory order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the index in central directory order.
func (r *Reader) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

func (r *Reader) Entry(name string) (Entry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// ReadFile decompresses the named entry and verifies its CRC-32.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	e, ok := r.Entry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if e.UncompressedSize > r.limits.MaxEntrySize {
		return nil, fmt.Errorf("%w: %q is %d bytes uncompressed", ErrLimitExceeded, name, e.UncompressedSize)
	}
	raw := r.buf[e.DataOffset : e.DataOffset+int64(e.CompressedSize)]
	out, err := decompress(e.Method, raw, e.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}
	if sum := crc32.ChecksumIEEE(out); sum != e.CRC32 {
		return nil, fmt.Errorf("%w: %q crc32 %08x != stored %08x", ErrChecksum, name, sum, e.CRC32)
	}
	return out, nil
}

// ReadText reads the named entry and decodes it with [DecodeText].
func (r *Reader) ReadText(name string) (string, error) {
	b, err := r.ReadFile(name)
	if err != nil {
		return "", err
	}
	s, err := DecodeText(b)
	if err != nil {
		return "", fmt.Errorf("%q: %w", name, err)
	}
	return s, nil
}
