// Package archive reads and writes the ZIP subset used by compressed
// MusicXML (.mxl) files.
//
// Only what a single-disk archive of a few small XML documents needs is
// supported: no ZIP64, no encryption, no data descriptors. Archives are
// handled entirely in memory.
//
// # Reading
//
// [Open] indexes an archive from its end of central directory record. Each
// indexed [Entry] can then be decompressed with [Reader.ReadFile], which
// verifies the stored CRC-32:
//
//	r, err := archive.Open(data)
//	if err != nil {
//		return err
//	}
//	text, err := r.ReadText("META-INF/container.xml")
//
// Only Deflate entries are indexed by default. Use [WithMethods] to also
// accept Store or Zstd entries.
//
// # Writing
//
// [Writer] buffers one entry at a time and compresses it when the next entry
// starts or when [Writer.Finish] is called:
//
//	w := archive.NewWriter()
//	_ = w.Create("META-INF/container.xml")
//	_, _ = w.Write(containerXML)
//	_ = w.Create("score.musicxml")
//	_, _ = w.Write(score)
//	data, err := w.Finish()
package archive
