// Command mxl inspects and converts MusicXML files.
//
//	mxl inspect score.mxl
//	mxl cat -compact score.mxl
//	mxl convert -to mxl -layout partwise -out build/ a.musicxml b.musicxml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/logicossoftware/go-musicxml"
	"github.com/logicossoftware/go-musicxml/archive"
	"golang.org/x/sync/errgroup"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mxl <inspect|cat|convert> [flags] file...")
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("mxl: ")
	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "inspect":
		runInspect(args)
	case "cat":
		runCat(args)
	case "convert":
		runConvert(args)
	default:
		usage()
	}
}

type entrySummary struct {
	Name             string    `json:"name"`
	Method           string    `json:"method"`
	CompressedSize   uint64    `json:"compressed_size"`
	UncompressedSize uint64    `json:"uncompressed_size"`
	CRC32            string    `json:"crc32"`
	Modified         time.Time `json:"modified"`
}

type summary struct {
	Path       string            `json:"path"`
	Format     string            `json:"format"`
	Entries    []entrySummary    `json:"entries,omitempty"`
	Root       string            `json:"root"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Parts      int               `json:"parts"`
	Measures   int               `json:"measures"`
}

func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	all := fs.Bool("all-methods", false, "also index stored and zstd container entries")
	fs.Parse(args)
	if fs.NArg() == 0 {
		log.Fatal("inspect: no input files")
	}

	var out []summary
	for _, path := range fs.Args() {
		s, err := inspect(path, *all)
		if err != nil {
			log.Fatalf("inspect %s: %v", path, err)
		}
		out = append(out, s)
	}
	b, err := marshalSummaries(out)
	if err != nil {
		log.Fatalf("inspect: %v", err)
	}
	fmt.Println(string(b))
}

func marshalSummaries(s []summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func inspect(path string, allMethods bool) (summary, error) {
	s := summary{Path: path}
	format, err := musicxml.DetectFormat(path)
	if err != nil {
		return s, err
	}
	s.Format = format.String()

	var opts []musicxml.ReadOption
	if allMethods {
		opts = append(opts, musicxml.WithArchiveMethods(archive.Deflate, archive.Store, archive.Zstd))
	}
	if format == musicxml.FormatContainer {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, err
		}
		var aopts []archive.ReadOption
		if allMethods {
			aopts = append(aopts, archive.WithMethods(archive.Deflate, archive.Store, archive.Zstd))
		}
		zr, err := archive.Open(data, aopts...)
		if err != nil {
			return s, err
		}
		for _, e := range zr.Entries() {
			s.Entries = append(s.Entries, entrySummary{
				Name:             e.Name,
				Method:           e.Method.String(),
				CompressedSize:   e.CompressedSize,
				UncompressedSize: e.UncompressedSize,
				CRC32:            fmt.Sprintf("%08x", e.CRC32),
				Modified:         e.Modified,
			})
		}
	}

	root, err := musicxml.ReadFile(path, opts...)
	if err != nil {
		return s, err
	}
	s.Root = root.Name
	for _, a := range root.Attributes {
		if s.Attributes == nil {
			s.Attributes = make(map[string]string)
		}
		s.Attributes[a.Name] = a.Value
	}
	if tw, err := musicxml.ToTimewise(root); err == nil {
		s.Measures = len(tw.ChildrenNamed("measure"))
		if pw, err := musicxml.ToPartwise(tw); err == nil {
			s.Parts = len(pw.ChildrenNamed("part"))
		}
	}
	return s, nil
}

func runCat(args []string) {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	compact := fs.Bool("compact", false, "print without indentation")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatal("cat: exactly one input file required")
	}

	root, err := musicxml.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	style := musicxml.Indented
	if *compact {
		style = musicxml.Compact
	}
	if err := musicxml.RenderTo(os.Stdout, root, style); err != nil {
		log.Fatalf("write: %v", err)
	}
	fmt.Println()
}

// target describes one output format of the convert command.
type target struct {
	ext        string
	compressed bool
	stream     musicxml.Compression
}

var targets = map[string]target{
	"mxl":      {ext: ".mxl", compressed: true},
	"musicxml": {ext: ".musicxml"},
	"zst":      {ext: ".musicxml.zst", stream: musicxml.CompZSTD},
	"lz4":      {ext: ".musicxml.lz4", stream: musicxml.CompLZ4},
	"br":       {ext: ".musicxml.br", stream: musicxml.CompBR},
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	to := fs.String("to", "mxl", "output format: mxl, musicxml, zst, lz4 or br")
	layout := fs.String("layout", "keep", "score layout: keep, partwise or timewise")
	outDir := fs.String("out", ".", "output directory")
	compact := fs.Bool("compact", false, "write without indentation")
	jobs := fs.Int("jobs", runtime.NumCPU(), "files converted in parallel")
	fs.Parse(args)

	tgt, ok := targets[*to]
	if !ok {
		log.Fatalf("convert: unknown format %q", *to)
	}
	var reshape func(*musicxml.Element) (*musicxml.Element, error)
	switch *layout {
	case "keep":
	case "partwise":
		reshape = musicxml.ToPartwise
	case "timewise":
		reshape = musicxml.ToTimewise
	default:
		log.Fatalf("convert: unknown layout %q", *layout)
	}
	if fs.NArg() == 0 {
		log.Fatal("convert: no input files")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	opts := []musicxml.WriteOption{musicxml.WithStreamCompression(tgt.stream)}
	if *compact {
		opts = append(opts, musicxml.WithStyle(musicxml.Compact))
	}

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(max(*jobs, 1))
	for _, in := range fs.Args() {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			root, err := musicxml.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}
			if reshape != nil {
				if root, err = reshape(root); err != nil {
					return fmt.Errorf("%s: %w", in, err)
				}
			}
			out := filepath.Join(*outDir, baseName(in)+tgt.ext)
			if err := musicxml.WriteFile(out, root, tgt.compressed, opts...); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Printf("wrote %s", out)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatal(err)
	}
}

// baseName strips the directory and every known score extension from path.
func baseName(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{".zst", ".lz4", ".br"} {
		name = strings.TrimSuffix(name, ext)
	}
	for _, ext := range []string{".musicxml", ".mxl", ".xml"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
