package archive

import (
	"encoding/binary"
	"fmt"
)

const (
	localHeaderSig   uint32 = 0x04034b50
	centralHeaderSig uint32 = 0x02014b50
	endRecordSig     uint32 = 0x06054b50

	localHeaderLen   = 30
	centralHeaderLen = 46
	endRecordLen     = 22

	// zip64 and multi-disk archives mark these fields with all ones.
	uint16Max = 0xFFFF
	uint32Max = 0xFFFFFFFF

	maxCommentLen = uint16Max
)

// LocalMagic is the 4-byte signature every archive begins with.
var LocalMagic = [4]byte{0x50, 0x4B, 0x03, 0x04}

type localHeader struct {
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	NameLen          uint16
	ExtraLen         uint16
}

type centralHeader struct {
	VersionMadeBy    uint16
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	NameLen          uint16
	ExtraLen         uint16
	CommentLen       uint16
	DiskStart        uint16
	InternalAttrs    uint16
	ExternalAttrs    uint32
	LocalOffset      uint32
}

type endRecord struct {
	DiskNumber   uint16
	DirDisk      uint16
	DiskEntries  uint16
	TotalEntries uint16
	DirSize      uint32
	DirOffset    uint32
	CommentLen   uint16
}

func (h localHeader) size() int {
	return localHeaderLen + int(h.NameLen) + int(h.ExtraLen)
}

func (h centralHeader) size() int {
	return centralHeaderLen + int(h.NameLen) + int(h.ExtraLen) + int(h.CommentLen)
}

func decodeLocalHeader(b []byte) (localHeader, error) {
	if len(b) < localHeaderLen {
		return localHeader{}, fmt.Errorf("%w: local header truncated", ErrFormat)
	}
	if binary.LittleEndian.Uint32(b[0:4]) != localHeaderSig {
		return localHeader{}, fmt.Errorf("%w: bad local header signature", ErrFormat)
	}
	var h localHeader
	h.VersionNeeded = binary.LittleEndian.Uint16(b[4:6])
	h.Flags = binary.LittleEndian.Uint16(b[6:8])
	h.Method = binary.LittleEndian.Uint16(b[8:10])
	h.ModTime = binary.LittleEndian.Uint16(b[10:12])
	h.ModDate = binary.LittleEndian.Uint16(b[12:14])
	h.CRC32 = binary.LittleEndian.Uint32(b[14:18])
	h.CompressedSize = binary.LittleEndian.Uint32(b[18:22])
	h.UncompressedSize = binary.LittleEndian.Uint32(b[22:26])
	h.NameLen = binary.LittleEndian.Uint16(b[26:28])
	h.ExtraLen = binary.LittleEndian.Uint16(b[28:30])
	return h, nil
}

func appendLocalHeader(dst []byte, h localHeader) []byte {
	var buf [localHeaderLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], localHeaderSig)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint16(buf[8:10], h.Method)
	binary.LittleEndian.PutUint16(buf[10:12], h.ModTime)
	binary.LittleEndian.PutUint16(buf[12:14], h.ModDate)
	binary.LittleEndian.PutUint32(buf[14:18], h.CRC32)
	binary.LittleEndian.PutUint32(buf[18:22], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[22:26], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[26:28], h.NameLen)
	binary.LittleEndian.PutUint16(buf[28:30], h.ExtraLen)
	return append(dst, buf[:]...)
}

func decodeCentralHeader(b []byte) (centralHeader, error) {
	if len(b) < centralHeaderLen {
		return centralHeader{}, fmt.Errorf("%w: central directory record truncated", ErrFormat)
	}
	if binary.LittleEndian.Uint32(b[0:4]) != centralHeaderSig {
		return centralHeader{}, fmt.Errorf("%w: bad central directory signature", ErrFormat)
	}
	var h centralHeader
	h.VersionMadeBy = binary.LittleEndian.Uint16(b[4:6])
	h.VersionNeeded = binary.LittleEndian.Uint16(b[6:8])
	h.Flags = binary.LittleEndian.Uint16(b[8:10])
	h.Method = binary.LittleEndian.Uint16(b[10:12])
	h.ModTime = binary.LittleEndian.Uint16(b[12:14])
	h.ModDate = binary.LittleEndian.Uint16(b[14:16])
	h.CRC32 = binary.LittleEndian.Uint32(b[16:20])
	h.CompressedSize = binary.LittleEndian.Uint32(b[20:24])
	h.UncompressedSize = binary.LittleEndian.Uint32(b[24:28])
	h.NameLen = binary.LittleEndian.Uint16(b[28:30])
	h.ExtraLen = binary.LittleEndian.Uint16(b[30:32])
	h.CommentLen = binary.LittleEndian.Uint16(b[32:34])
	h.DiskStart = binary.LittleEndian.Uint16(b[34:36])
	h.InternalAttrs = binary.LittleEndian.Uint16(b[36:38])
	h.ExternalAttrs = binary.LittleEndian.Uint32(b[38:42])
	h.LocalOffset = binary.LittleEndian.Uint32(b[42:46])
	return h, nil
}

func appendCentralHeader(dst []byte, h centralHeader) []byte {
	var buf [centralHeaderLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], centralHeaderSig)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionMadeBy)
	binary.LittleEndian.PutUint16(buf[6:8], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[8:10], h.Flags)
	binary.LittleEndian.PutUint16(buf[10:12], h.Method)
	binary.LittleEndian.PutUint16(buf[12:14], h.ModTime)
	binary.LittleEndian.PutUint16(buf[14:16], h.ModDate)
	binary.LittleEndian.PutUint32(buf[16:20], h.CRC32)
	binary.LittleEndian.PutUint32(buf[20:24], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[28:30], h.NameLen)
	binary.LittleEndian.PutUint16(buf[30:32], h.ExtraLen)
	binary.LittleEndian.PutUint16(buf[32:34], h.CommentLen)
	binary.LittleEndian.PutUint16(buf[34:36], h.DiskStart)
	binary.LittleEndian.PutUint16(buf[36:38], h.InternalAttrs)
	binary.LittleEndian.PutUint32(buf[38:42], h.ExternalAttrs)
	binary.LittleEndian.PutUint32(buf[42:46], h.LocalOffset)
	return append(dst, buf[:]...)
}

func decodeEndRecord(b []byte) (endRecord, error) {
	if len(b) < endRecordLen {
		return endRecord{}, fmt.Errorf("%w: end record truncated", ErrFormat)
	}
	if binary.LittleEndian.Uint32(b[0:4]) != endRecordSig {
		return endRecord{}, fmt.Errorf("%w: bad end record signature", ErrFormat)
	}
	var r endRecord
	r.DiskNumber = binary.LittleEndian.Uint16(b[4:6])
	r.DirDisk = binary.LittleEndian.Uint16(b[6:8])
	r.DiskEntries = binary.LittleEndian.Uint16(b[8:10])
	r.TotalEntries = binary.LittleEndian.Uint16(b[10:12])
	r.DirSize = binary.LittleEndian.Uint32(b[12:16])
	r.DirOffset = binary.LittleEndian.Uint32(b[16:20])
	r.CommentLen = binary.LittleEndian.Uint16(b[20:22])
	return r, nil
}

func appendEndRecord(dst []byte, r endRecord) []byte {
	var buf [endRecordLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], endRecordSig)
	binary.LittleEndian.PutUint16(buf[4:6], r.DiskNumber)
	binary.LittleEndian.PutUint16(buf[6:8], r.DirDisk)
	binary.LittleEndian.PutUint16(buf[8:10], r.DiskEntries)
	binary.LittleEndian.PutUint16(buf[10:12], r.TotalEntries)
	binary.LittleEndian.PutUint32(buf[12:16], r.DirSize)
	binary.LittleEndian.PutUint32(buf[16:20], r.DirOffset)
	binary.LittleEndian.PutUint16(buf[20:22], r.CommentLen)
	return append(dst, buf[:]...)
}

// findEndRecord locates the end of central directory record by scanning
// backward from the end of b. The record may be followed by a comment of up
// to 65535 bytes, and the comment length must reach exactly to the end of b.
func findEndRecord(b []byte) (endRecord, int, error) {
	if len(b) < endRecordLen {
		return endRecord{}, 0, fmt.Errorf("%w: archive too small", ErrFormat)
	}
	lowest := len(b) - endRecordLen - maxCommentLen
	if lowest < 0 {
		lowest = 0
	}
	for i := len(b) - endRecordLen; i >= lowest; i-- {
		if binary.LittleEndian.Uint32(b[i:i+4]) != endRecordSig {
			continue
		}
		r, err := decodeEndRecord(b[i:])
		if err != nil {
			continue
		}
		if i+endRecordLen+int(r.CommentLen) != len(b) {
			continue
		}
		return r, i, nil
	}
	return endRecord{}, 0, fmt.Errorf("%w: end of central directory not found", ErrFormat)
}
