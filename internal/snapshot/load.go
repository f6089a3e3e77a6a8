package snapshot

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Format is the encoding of a snapshot document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported snapshot extension %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
}

// Load reads and validates the snapshot document at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document in the given format, applies defaults and
// validates it.
func Parse(data []byte, format Format) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch format {
	case FormatYAML:
		doc, err = parseYAML(data)
	case FormatCUE:
		doc, err = parseCUE(data)
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
	if err != nil {
		return nil, err
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseYAML(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty snapshot document")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &doc, nil
}

func parseCUE(data []byte) (*Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename("snapshot.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile cue: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Snapshot")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate cue: %w", err)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode cue: %w", err)
	}
	return &doc, nil
}
