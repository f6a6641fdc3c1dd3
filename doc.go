// Package musicxml reads and writes MusicXML documents as generic element
// trees.
//
// A document is held as a tree of [Element] values: a name, ordered
// attributes, ordered children and text. The package does not interpret
// MusicXML semantics beyond the two score layouts, score-partwise and
// score-timewise, which [ToTimewise] and [ToPartwise] convert between.
//
// # Storage Formats
//
// A document on disk is one of:
//   - an uncompressed .musicxml file
//   - a compressed .mxl container: a ZIP archive whose
//     META-INF/container.xml names the score entry (see package archive)
//   - an uncompressed document wrapped in a Zstandard, LZ4 or Brotli stream
//
// [ReadFile] and [Decode] detect the format; [DetectFormat] and
// [IsContainer] report it without parsing.
//
// # Basic Usage
//
// To read a score and write it back as a container:
//
//	root, err := musicxml.ReadFile("score.musicxml")
//	if err != nil {
//		return err
//	}
//	err = musicxml.WriteFile("score.mxl", root, true)
//
// To work with text directly:
//
//	root, err := musicxml.Parse(`<score-partwise version="4.0">...</score-partwise>`)
//	s := musicxml.Render(root, musicxml.Compact)
//
// # Security Considerations
//
// Input size, decompressed size and element nesting are bounded by
// configurable [Limits]. Parsing does not recurse, so deeply nested input
// fails with [ErrDepthExceeded] rather than exhausting the stack.
package musicxml
