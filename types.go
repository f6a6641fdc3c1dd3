package musicxml

// Root element names of the two MusicXML score layouts.
const (
	RootPartwise = "score-partwise"
	RootTimewise = "score-timewise"
)

// Fixed names inside a compressed (.mxl) container.
const (
	ContainerPath   = "META-INF/container.xml"
	DefaultRootPath = "score.musicxml"
	MediaType       = "application/vnd.recordare.musicxml+xml"
)

// Style selects how Render lays out a tree.
type Style uint8

const (
	// Compact inserts no whitespace at all.
	Compact Style = iota
	// Indented puts every element on its own line, two spaces per level.
	Indented
)

// Format identifies how a document is stored on disk.
type Format uint8

const (
	FormatPlain Format = iota
	FormatContainer
	FormatZstd
	FormatLZ4
	FormatBrotli
)

func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatContainer:
		return "container"
	case FormatZstd:
		return "zstd"
	case FormatLZ4:
		return "lz4"
	case FormatBrotli:
		return "brotli"
	default:
		return "unknown"
	}
}

// Compression is the whole-file compression applied to an uncompressed
// (non-container) document.
type Compression uint8

const (
	CompNone Compression = iota
	CompZSTD
	CompLZ4
	CompBR
)

var (
	containerMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	zstdMagic      = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic       = []byte{0x04, 0x22, 0x4D, 0x18}
)
