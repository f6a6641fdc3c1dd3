package musicxml

type Limits struct {
	MaxFileSize  int64  // bytes read from disk, compressed or not
	MaxEntrySize uint64 // decompressed bytes of a single document or archive entry
	MaxDepth     int    // element nesting
}

const defaultMaxDepth = 512

func defaultLimits() Limits {
	return Limits{
		MaxFileSize:  1 << 30,   // 1 GiB
		MaxEntrySize: 256 << 20, // 256 MiB
		MaxDepth:     defaultMaxDepth,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxFileSize == 0 {
		l.MaxFileSize = d.MaxFileSize
	}
	if l.MaxEntrySize == 0 {
		l.MaxEntrySize = d.MaxEntrySize
	}
	if l.MaxDepth == 0 {
		l.MaxDepth = d.MaxDepth
	}
	return l
}
