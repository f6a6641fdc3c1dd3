package archive

import (
	"bytes"
	"fmt"
	"hash/crc32"
)

// Writer builds an archive in memory, one entry at a time.
//
// Entry data is buffered whole and compressed when the next entry is
// started or the archive is finished. A Writer that is dropped before
// Finish produces nothing.
type Writer struct {
	cfg     writeConfig
	out     []byte
	records []record
	names   map[string]struct{}
	pending *pendingEntry
	closed  bool
}

type pendingEntry struct {
	name string
	buf  bytes.Buffer
}

// record is a finalized entry awaiting its central directory record.
type record struct {
	name   string
	header centralHeader
}

func NewWriter(opts ...WriteOption) *Writer {
	cfg := defaultWriteConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Writer{cfg: cfg, names: make(map[string]struct{})}
}

// Create finalizes the pending entry, if any, and starts a new one.
func (w *Writer) Create(name string) error {
	if w.closed {
		return ErrClosed
	}
	if err := validateEntryName(name); err != nil {
		return err
	}
	if _, dup := w.names[name]; dup {
		return fmt.Errorf("%w: duplicate entry %q", ErrInvalidName, name)
	}
	if err := w.finalize(); err != nil {
		return err
	}
	if len(w.records) >= uint16Max-1 {
		return fmt.Errorf("%w: more than %d entries", ErrUnsupported, uint16Max-1)
	}
	w.names[name] = struct{}{}
	w.pending = &pendingEntry{name: name}
	return nil
}

// Write appends p to the pending entry.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.pending == nil {
		return 0, ErrNoEntry
	}
	if uint64(w.pending.buf.Len())+uint64(len(p)) > uint32Max {
		return 0, fmt.Errorf("%w: entry %q larger than 4 GiB", ErrUnsupported, w.pending.name)
	}
	return w.pending.buf.Write(p)
}

// Add creates an entry holding data.
func (w *Writer) Add(name string, data []byte) error {
	if err := w.Create(name); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// Len reports the number of entries finalized so far.
func (w *Writer) Len() int {
	return len(w.records)
}

// Finish finalizes the pending entry, appends the central directory and the
// end record, and returns the complete archive. The Writer cannot be used
// afterwards.
func (w *Writer) Finish() ([]byte, error) {
	if w.closed {
		return nil, ErrClosed
	}
	if err := w.finalize(); err != nil {
		return nil, err
	}
	dirStart := len(w.out)
	if uint64(dirStart) > uint32Max {
		return nil, fmt.Errorf("%w: archive larger than 4 GiB", ErrUnsupported)
	}
	for _, rec := range w.records {
		w.out = appendCentralHeader(w.out, rec.header)
		w.out = append(w.out, rec.name...)
	}
	dirSize := len(w.out) - dirStart
	w.out = appendEndRecord(w.out, endRecord{
		DiskEntries:  uint16(len(w.records)),
		TotalEntries: uint16(len(w.records)),
		DirSize:      uint32(dirSize),
		DirOffset:    uint32(dirStart),
	})
	w.closed = true
	out := w.out
	w.out = nil
	return out, nil
}

// finalize compresses the pending entry and appends its local header, name
// and payload to the output.
func (w *Writer) finalize() error {
	p := w.pending
	if p == nil {
		return nil
	}
	w.pending = nil

	data := p.buf.Bytes()
	sum := crc32.ChecksumIEEE(data)
	compressed, err := compress(w.cfg.method, w.cfg.level, data)
	if err != nil {
		return fmt.Errorf("compress %q: %w", p.name, err)
	}
	if uint64(len(compressed)) > uint32Max {
		return fmt.Errorf("%w: entry %q compresses beyond 4 GiB", ErrUnsupported, p.name)
	}
	offset := len(w.out)
	if uint64(offset) > uint32Max {
		return fmt.Errorf("%w: archive larger than 4 GiB", ErrUnsupported)
	}

	var flags uint16
	if !isASCII(p.name) {
		flags |= flagUTF8
	}
	date, tm := timeToMSDOS(w.cfg.modified)
	lh := localHeader{
		VersionNeeded:    w.cfg.method.versionNeeded(),
		Flags:            flags,
		Method:           uint16(w.cfg.method),
		ModTime:          tm,
		ModDate:          date,
		CRC32:            sum,
		CompressedSize:   uint32(len(compressed)),
		UncompressedSize: uint32(len(data)),
		NameLen:          uint16(len(p.name)),
	}
	w.out = appendLocalHeader(w.out, lh)
	w.out = append(w.out, p.name...)
	w.out = append(w.out, compressed...)

	w.records = append(w.records, record{
		name: p.name,
		header: centralHeader{
			VersionMadeBy:    lh.VersionNeeded,
			VersionNeeded:    lh.VersionNeeded,
			Flags:            lh.Flags,
			Method:           lh.Method,
			ModTime:          lh.ModTime,
			ModDate:          lh.ModDate,
			CRC32:            lh.CRC32,
			CompressedSize:   lh.CompressedSize,
			UncompressedSize: lh.UncompressedSize,
			NameLen:          lh.NameLen,
			LocalOffset:      uint32(offset),
		},
	})
	return nil
}
