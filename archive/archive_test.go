package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 15, 10, 30, 20, 0, time.UTC)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container>
  <rootfiles>
    <rootfile full-path="score.musicxml" media-type="application/vnd.recordare.musicxml+xml"/>
  </rootfiles>
</container>`

const scoreXML = `<score-partwise version="4.0"><part id="P1"><measure number="1"/></part></score-partwise>`

func buildArchive(t *testing.T, opts ...WriteOption) []byte {
	t.Helper()
	w := NewWriter(append([]WriteOption{WithModified(fixedTime)}, opts...)...)
	require.NoError(t, w.Create("META-INF/container.xml"))
	_, err := w.Write([]byte(containerXML))
	require.NoError(t, err)
	require.NoError(t, w.Add("score.musicxml", []byte(scoreXML)))
	data, err := w.Finish()
	require.NoError(t, err)
	return data
}

func TestRoundTrip(t *testing.T) {
	data := buildArchive(t)
	require.True(t, bytes.HasPrefix(data, LocalMagic[:]))

	r, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"META-INF/container.xml", "score.musicxml"}, r.Names())

	for name, want := range map[string]string{
		"META-INF/container.xml": containerXML,
		"score.musicxml":         scoreXML,
	} {
		got, err := r.ReadFile(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)

		e, ok := r.Entry(name)
		require.True(t, ok)
		assert.Equal(t, crc32.ChecksumIEEE([]byte(want)), e.CRC32)
		assert.Equal(t, uint64(len(want)), e.UncompressedSize)
		assert.Equal(t, Deflate, e.Method)
		assert.Equal(t, fixedTime, e.Modified)
	}
}

func TestRoundTrip_Methods(t *testing.T) {
	for _, m := range []Method{Store, Deflate, Zstd} {
		t.Run(m.String(), func(t *testing.T) {
			data := buildArchive(t, WithMethod(m))
			r, err := Open(data, WithMethods(m))
			require.NoError(t, err)
			got, err := r.ReadText("score.musicxml")
			require.NoError(t, err)
			assert.Equal(t, scoreXML, got)
		})
	}
}

func TestOpen_SkipsDisabledMethods(t *testing.T) {
	data := buildArchive(t, WithMethod(Store))
	r, err := Open(data)
	require.NoError(t, err)
	assert.Empty(t, r.Names())
	_, err = r.ReadFile("score.musicxml")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReadFile_NotFound(t *testing.T) {
	r, err := Open(buildArchive(t))
	require.NoError(t, err)
	_, err = r.ReadFile("missing.xml")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.ReadText("missing.xml")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReadFile_ChecksumMismatch(t *testing.T) {
	data := buildArchive(t)
	r, err := Open(data)
	require.NoError(t, err)
	e, _ := r.Entry("score.musicxml")

	// Corrupt the stored checksum in the central directory record.
	end, _, err := findEndRecord(data)
	require.NoError(t, err)
	off := int(end.DirOffset)
	for i := 0; i < int(end.TotalEntries); i++ {
		ch, err := decodeCentralHeader(data[off:])
		require.NoError(t, err)
		if ch.LocalOffset == uint32(e.HeaderOffset) {
			binary.LittleEndian.PutUint32(data[off+16:off+20], ch.CRC32^0xFFFFFFFF)
		}
		off += ch.size()
	}

	r, err = Open(data)
	require.NoError(t, err)
	_, err = r.ReadFile("score.musicxml")
	require.ErrorIs(t, err, ErrChecksum)
	_, err = r.ReadFile("META-INF/container.xml")
	require.NoError(t, err)
}

func TestReadFile_CorruptPayload(t *testing.T) {
	data := buildArchive(t)
	r, err := Open(data)
	require.NoError(t, err)
	e, _ := r.Entry("score.musicxml")
	for i := e.DataOffset; i < e.DataOffset+int64(e.CompressedSize); i++ {
		data[i] = 0xFF
	}
	_, err = r.ReadFile("score.musicxml")
	require.Error(t, err)
}

func TestReadFile_EntryLimit(t *testing.T) {
	r, err := Open(buildArchive(t), WithReadLimits(Limits{MaxEntrySize: 8}))
	require.NoError(t, err)
	_, err = r.ReadFile("score.musicxml")
	require.ErrorIs(t, err, ErrLimitExceeded)
}

func TestOpen_EntryCountLimit(t *testing.T) {
	_, err := Open(buildArchive(t), WithReadLimits(Limits{MaxEntries: 1}))
	require.ErrorIs(t, err, ErrLimitExceeded)
}

func TestOpen_Malformed(t *testing.T) {
	good := buildArchive(t)
	tests := map[string][]byte{
		"empty":      nil,
		"plain xml":  []byte(`<?xml version="1.0"?><score-partwise/>`),
		"truncated":  good[:len(good)-5],
		"magic only": append([]byte{}, LocalMagic[:]...),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Open(data)
			require.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestOpen_BadLocalHeaderOffset(t *testing.T) {
	data := buildArchive(t)
	end, _, err := findEndRecord(data)
	require.NoError(t, err)
	off := int(end.DirOffset)
	binary.LittleEndian.PutUint32(data[off+42:off+46], uint32(end.DirOffset))
	_, err = Open(data)
	require.ErrorIs(t, err, ErrFormat)
}

func TestOpen_DirectorySignatureInPayload(t *testing.T) {
	// Member data containing directory and end-record signatures must not
	// confuse the index.
	payload := []byte("PK\x01\x02 not a record PK\x05\x06 nor this")
	w := NewWriter(WithMethod(Store), WithModified(fixedTime))
	require.NoError(t, w.Add("a.bin", payload))
	require.NoError(t, w.Add("b.bin", []byte("second")))
	data, err := w.Finish()
	require.NoError(t, err)

	r, err := Open(data, WithMethods(Store))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin", "b.bin"}, r.Names())
	got, err := r.ReadFile("a.bin")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestOpen_Comment(t *testing.T) {
	data := buildArchive(t)
	comment := "trailing PK\x05\x06 comment"
	binary.LittleEndian.PutUint16(data[len(data)-2:], uint16(len(comment)))
	data = append(data, comment...)
	r, err := Open(data)
	require.NoError(t, err)
	assert.Len(t, r.Names(), 2)
}

func TestOpen_Unsupported(t *testing.T) {
	t.Run("multi-disk", func(t *testing.T) {
		data := buildArchive(t)
		binary.LittleEndian.PutUint16(data[len(data)-endRecordLen+4:], 1)
		_, err := Open(data)
		require.ErrorIs(t, err, ErrUnsupported)
	})
	t.Run("zip64", func(t *testing.T) {
		data := buildArchive(t)
		binary.LittleEndian.PutUint32(data[len(data)-endRecordLen+16:], uint32Max)
		_, err := Open(data)
		require.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestOpen_StdlibArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("score.musicxml")
	require.NoError(t, err)
	_, err = io.WriteString(fw, scoreXML)
	require.NoError(t, err)
	sw, err := zw.CreateHeader(&zip.FileHeader{Name: "stored.txt", Method: zip.Store})
	require.NoError(t, err)
	_, err = io.WriteString(sw, "stored")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r, err := Open(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"score.musicxml"}, r.Names())
	got, err := r.ReadText("score.musicxml")
	require.NoError(t, err)
	assert.Equal(t, scoreXML, got)
}

func TestWriter_ReadableByStdlib(t *testing.T) {
	data := buildArchive(t)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, scoreXML, string(got))
	assert.Equal(t, "score.musicxml", zr.File[1].Name)
}

func TestWriter_Errors(t *testing.T) {
	w := NewWriter()
	_, err := w.Write([]byte("x"))
	require.ErrorIs(t, err, ErrNoEntry)

	for _, name := range []string{"", "/abs", `a\b`, "a/../b", "..", "../x", "./a"} {
		require.ErrorIs(t, w.Create(name), ErrInvalidName, name)
	}

	require.NoError(t, w.Create("a"))
	require.ErrorIs(t, w.Create("a"), ErrInvalidName)
	require.NoError(t, w.Create("b"))
	assert.Equal(t, 1, w.Len())

	_, err = w.Finish()
	require.NoError(t, err)
	_, err = w.Finish()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, w.Create("c"), ErrClosed)
	_, err = w.Write([]byte("x"))
	require.ErrorIs(t, err, ErrClosed)
}

func TestWriter_UnsupportedMethod(t *testing.T) {
	w := NewWriter(WithMethod(Method(99)))
	require.NoError(t, w.Add("a", []byte("x")))
	_, err := w.Finish()
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestWriter_Empty(t *testing.T) {
	data, err := NewWriter().Finish()
	require.NoError(t, err)
	require.Len(t, data, endRecordLen)
	r, err := Open(data)
	require.NoError(t, err)
	assert.Empty(t, r.Names())
}

func TestWriter_EmptyEntryAndUTF8Name(t *testing.T) {
	w := NewWriter(WithModified(fixedTime))
	require.NoError(t, w.Create("empty.xml"))
	require.NoError(t, w.Add("partitur/Größe.musicxml", []byte(scoreXML)))
	data, err := w.Finish()
	require.NoError(t, err)

	r, err := Open(data)
	require.NoError(t, err)
	got, err := r.ReadFile("empty.xml")
	require.NoError(t, err)
	assert.Empty(t, got)

	e, ok := r.Entry("partitur/Größe.musicxml")
	require.True(t, ok)
	assert.NotZero(t, e.Flags&flagUTF8)
}

func TestWriter_LargeEntry(t *testing.T) {
	big := strings.Repeat("<note><pitch><step>C</step></pitch></note>", 20000)
	w := NewWriter()
	require.NoError(t, w.Add("big.xml", []byte(big)))
	data, err := w.Finish()
	require.NoError(t, err)
	assert.Less(t, len(data), len(big)/10)

	r, err := Open(data)
	require.NoError(t, err)
	got, err := r.ReadText("big.xml")
	require.NoError(t, err)
	assert.Equal(t, big, got)
}

func TestReadFile_ZstdUnderstatedSize(t *testing.T) {
	const size = 64 << 20
	w := NewWriter(WithMethod(Zstd), WithLevel(1))
	require.NoError(t, w.Add("zeros.bin", make([]byte, size)))
	data, err := w.Finish()
	require.NoError(t, err)

	// Claim the entry inflates to 10 bytes in both headers.
	end, _, err := findEndRecord(data)
	require.NoError(t, err)
	dir := int(end.DirOffset)
	binary.LittleEndian.PutUint32(data[22:26], 10)
	binary.LittleEndian.PutUint32(data[dir+24:dir+28], 10)

	r, err := Open(data, WithMethods(Zstd), WithReadLimits(Limits{MaxEntrySize: 1 << 20}))
	require.NoError(t, err)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = r.ReadFile("zeros.bin")
	runtime.ReadMemStats(&after)
	require.ErrorIs(t, err, ErrFormat)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(size/2))
}
