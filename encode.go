package musicxml

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/logicossoftware/go-musicxml/archive"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

var doctypes = map[string]string{
	RootPartwise: `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 4.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">` + "\n",
	RootTimewise: `<!DOCTYPE score-timewise PUBLIC "-//Recordare//DTD MusicXML 4.0 Timewise//EN" "http://www.musicxml.org/dtds/timewise.dtd">` + "\n",
}

func defaultWriteConfig() writeConfig {
	return writeConfig{
		limits:      defaultLimits(),
		style:       Indented,
		declaration: true,
		rootPath:    DefaultRootPath,
		compression: CompNone,
		method:      archive.Deflate,
		level:       flate.BestCompression,
	}
}

// Encode writes the tree rooted at root to w.
//
// When compressed is true the output is a container holding
// META-INF/container.xml, which points at the score entry, followed by the
// score itself. Otherwise the rendered document is written directly,
// optionally wrapped by [WithStreamCompression].
//
// By default the document is indented and starts with an XML declaration
// and, for score-partwise and score-timewise roots, the matching DOCTYPE.
func Encode(w io.Writer, root *Element, compressed bool, opts ...WriteOption) error {
	out, err := encode(root, compressed, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// WriteFile encodes root as Encode does and writes the result to path,
// truncating any existing file.
func WriteFile(path string, root *Element, compressed bool, opts ...WriteOption) error {
	out, err := encode(root, compressed, opts)
	if err != nil {
		return err
	}
	return writeFile(path, out, 0o644)
}

func encode(root *Element, compressed bool, opts []WriteOption) ([]byte, error) {
	cfg := defaultWriteConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if err := validateElement(root, cfg.limits.MaxDepth); err != nil {
		return nil, err
	}

	doc := renderDocument(root, cfg.style, cfg.declaration)
	if !compressed {
		return compressStream(cfg.compression, doc)
	}
	return writeContainer(doc, cfg)
}

// renderDocument renders root, prefixed with the declaration lines when decl
// is set.
func renderDocument(root *Element, style Style, decl bool) []byte {
	var buf bytes.Buffer
	if decl {
		buf.WriteString(xmlDeclaration)
		buf.WriteString(doctypes[root.Name])
	}
	buf.WriteString(Render(root, style))
	return buf.Bytes()
}

// containerDocument builds META-INF/container.xml pointing at rootPath.
func containerDocument(rootPath string) *Element {
	rootfile := NewElement("rootfile").
		SetAttr("full-path", rootPath).
		SetAttr("media-type", MediaType)
	return NewElement("container").
		AddChild(NewElement("rootfiles").AddChild(rootfile))
}

func writeContainer(doc []byte, cfg writeConfig) ([]byte, error) {
	if cfg.rootPath == ContainerPath {
		return nil, fmt.Errorf("%w: rootfile cannot be %s", archive.ErrInvalidName, ContainerPath)
	}
	opts := []archive.WriteOption{archive.WithMethod(cfg.method), archive.WithLevel(cfg.level)}
	if !cfg.modified.IsZero() {
		opts = append(opts, archive.WithModified(cfg.modified))
	}
	zw := archive.NewWriter(opts...)
	if err := zw.Add(ContainerPath, renderDocument(containerDocument(cfg.rootPath), Indented, true)); err != nil {
		return nil, err
	}
	if err := zw.Add(cfg.rootPath, doc); err != nil {
		return nil, err
	}
	return zw.Finish()
}
