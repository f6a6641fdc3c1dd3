package archive

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Function variables for testing injection.
var (
	now            = time.Now
	newFlateWriter = func(w io.Writer, level int) (*flate.Writer, error) { return flate.NewWriter(w, level) }
	flateClose     = func(w *flate.Writer) error { return w.Close() }
	newZstdWriter  = func(level int) (*zstd.Encoder, error) {
		if level <= 0 {
			return zstd.NewWriter(nil)
		}
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}
	newZstdReader = func(r io.Reader) (*zstd.Decoder, error) { return zstd.NewReader(r) }
	readAll       = io.ReadAll
)

// compress encodes in with method m.
func compress(m Method, level int, in []byte) ([]byte, error) {
	switch m {
	case Store:
		return in, nil
	case Deflate:
		return deflateCompress(in, level)
	case Zstd:
		return zstdCompress(in, level)
	default:
		return nil, fmt.Errorf("%w: compression method %d", ErrUnsupported, m)
	}
}

// decompress decodes in with method m. The output must be exactly expected
// bytes long.
func decompress(m Method, in []byte, expected uint64) ([]byte, error) {
	var out []byte
	var err error
	switch m {
	case Store:
		out = append([]byte(nil), in...)
	case Deflate:
		out, err = deflateDecompress(in, expected)
	case Zstd:
		out, err = zstdDecompress(in, expected)
	default:
		return nil, fmt.Errorf("%w: compression method %d", ErrUnsupported, m)
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) != expected {
		return nil, fmt.Errorf("%w: decompressed length %d != expected %d", ErrFormat, len(out), expected)
	}
	return out, nil
}

func deflateCompress(in []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := newFlateWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(in); err != nil {
		_ = flateClose(fw)
		return nil, err
	}
	if err := flateClose(fw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deflateDecompress inflates raw DEFLATE data, reading at most one byte past
// expected so oversized streams are detected without unbounded allocation.
func deflateDecompress(in []byte, expected uint64) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(in))
	defer fr.Close()
	out, err := readAll(io.LimitReader(fr, int64(expected)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrFormat, err)
	}
	if uint64(len(out)) > expected {
		return nil, fmt.Errorf("%w: deflate expanded beyond expected size", ErrFormat)
	}
	return out, nil
}

func zstdCompress(in []byte, level int) ([]byte, error) {
	enc, err := newZstdWriter(level)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, nil), nil
}

// zstdDecompress streams the frame through the same one-byte-past-expected
// bound as deflateDecompress.
func zstdDecompress(in []byte, expected uint64) ([]byte, error) {
	dec, err := newZstdReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := readAll(io.LimitReader(dec, int64(expected)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
	}
	if uint64(len(out)) > expected {
		return nil, fmt.Errorf("%w: zstd expanded beyond expected size", ErrFormat)
	}
	return out, nil
}
