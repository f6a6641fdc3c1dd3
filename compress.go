package musicxml

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Function variables for testing injection.
var (
	newZstdWriter = func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	newZstdReader = func(r io.Reader) (*zstd.Decoder, error) { return zstd.NewReader(r) }
	readAll       = io.ReadAll
	lz4Close      = func(w *lz4.Writer) error { return w.Close() }
	brotliClose   = func(w *brotli.Writer) error { return w.Close() }
	brotliWrite   = func(w *brotli.Writer, p []byte) (int, error) { return w.Write(p) }
	writeFile     = os.WriteFile
)

// compressStream wraps a rendered document in a whole-file compression
// stream. CompNone returns in unchanged.
func compressStream(comp Compression, in []byte) ([]byte, error) {
	switch comp {
	case CompNone:
		return in, nil
	case CompZSTD:
		return zstdCompress(in)
	case CompLZ4:
		return lz4Compress(in)
	case CompBR:
		return brotliCompress(in)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidPayload, comp)
	}
}

// decompressStream undoes compressStream for a document stored as f. The
// output may not exceed maxUncompressed bytes.
func decompressStream(f Format, in []byte, maxUncompressed uint64) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch f {
	case FormatPlain:
		out = in
	case FormatZstd:
		out, err = zstdDecompress(in, maxUncompressed)
	case FormatLZ4:
		out, err = lz4Decompress(in, maxUncompressed)
	case FormatBrotli:
		out, err = brotliDecompress(in, maxUncompressed)
	default:
		return nil, fmt.Errorf("%w: %s is not a stream format", ErrInvalidPayload, f)
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) > maxUncompressed {
		return nil, fmt.Errorf("%w: document is %d bytes", ErrLimitExceeded, len(out))
	}
	return out, nil
}

func zstdCompress(in []byte) ([]byte, error) {
	enc, err := newZstdWriter()
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, nil), nil
}

func zstdDecompress(in []byte, limit uint64) ([]byte, error) {
	dec, err := newZstdReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return readLimited(dec, limit, "zstd")
}

func lz4Compress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(in); err != nil {
		_ = lz4Close(zw)
		return nil, err
	}
	if err := lz4Close(zw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lz4Decompress(in []byte, limit uint64) ([]byte, error) {
	return readLimited(lz4.NewReader(bytes.NewReader(in)), limit, "lz4")
}

func brotliCompress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := brotliWrite(bw, in); err != nil {
		_ = brotliClose(bw)
		return nil, err
	}
	if err := brotliClose(bw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func brotliDecompress(in []byte, limit uint64) ([]byte, error) {
	return readLimited(brotli.NewReader(bytes.NewReader(in)), limit, "brotli")
}

// readLimited drains r, reading at most one byte past limit so an oversized
// stream is rejected without buffering all of it.
func readLimited(r io.Reader, limit uint64, algo string) ([]byte, error) {
	b, err := readAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, algo, err)
	}
	if uint64(len(b)) > limit {
		return nil, fmt.Errorf("%w: %s expanded beyond %d bytes", ErrLimitExceeded, algo, limit)
	}
	return b, nil
}
