package archive

import "time"

// Method is a ZIP compression method code.
type Method uint16

const (
	Store   Method = 0
	Deflate Method = 8
	Zstd    Method = 93
)

func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// versionNeeded is the "version needed to extract" written for m.
func (m Method) versionNeeded() uint16 {
	switch m {
	case Deflate:
		return 20
	case Zstd:
		return 63
	default:
		return 10
	}
}

const (
	flagEncrypted uint16 = 0x0001
	flagUTF8      uint16 = 0x0800
)

// Entry describes one indexed archive member.
//
// CompressedSize bytes starting at DataOffset hold the member's payload.
type Entry struct {
	Name             string
	Method           Method
	Flags            uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	Modified         time.Time
	HeaderOffset     int64
	DataOffset       int64
}
