// Package loader reads adventure documents, validates them, and compiles
// them into a fresh World. Documents may be JSON, YAML, or Lua scripts
// written against a small constructor DSL.
package loader

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/sagacore/types"
)

// ErrNotFound is returned when the adventure path does not exist.
var ErrNotFound = errors.New("no data available")

// ErrFormat is returned for a path whose format cannot be determined.
var ErrFormat = errors.New("unsupported adventure format")

// Format is an adventure document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatLua  Format = "lua"
)

// FormatOf picks a format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".lua":
		return FormatLua, nil
	}
	return "", errors.Wrapf(ErrFormat, "%s", path)
}

// Decode parses a JSON or YAML document. Lua sources run from files only,
// see Load.
func Decode(data []byte, format Format) (*Document, error) {
	doc := &Document{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, errors.Wrap(err, "decoding JSON adventure")
		}
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "decoding YAML adventure")
		}
		if err := remarshal(raw, doc); err != nil {
			return nil, errors.Wrap(err, "decoding YAML adventure")
		}
	default:
		return nil, errors.Wrapf(ErrFormat, "%q", format)
	}
	return doc, nil
}

// ReadDocument reads the document at path. A directory is read as a set
// of Lua scripts.
func ReadDocument(path string) (*Document, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading adventure %s", path)
	}
	if info.IsDir() {
		files, err := luaDir(path)
		if err != nil {
			return nil, err
		}
		return decodeLua(files)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatLua {
		return decodeLua([]string{path})
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading adventure %s", path)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return doc, nil
}

// Build validates doc and compiles it into a World. Warnings are logged;
// errors come back as a *ValidationError.
func Build(doc *Document, log *slog.Logger) (*types.World, error) {
	warnings, err := Validate(doc)
	for _, w := range warnings {
		log.Warn("adventure warning", "adventure", doc.ID, "warning", w)
	}
	if err != nil {
		return nil, err
	}
	return compile(doc), nil
}

// Load reads, validates and compiles the adventure at path.
func Load(path string, log *slog.Logger) (*types.World, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	w, err := Build(doc, log)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	log.Debug("adventure loaded", "path", path, "id", w.ID, "rooms", len(w.Rooms))
	return w, nil
}

// LoadOrDemo loads path, or the demo adventure when path is empty. With
// allowDemo set, a path that fails to load also falls back to the demo;
// the failure is logged.
func LoadOrDemo(path string, allowDemo bool, log *slog.Logger) (*types.World, error) {
	if path == "" {
		return Build(Demo(), log)
	}
	w, err := Load(path, log)
	if err == nil {
		return w, nil
	}
	if !allowDemo {
		return nil, err
	}
	log.Warn("falling back to demo adventure", "path", path, "error", err)
	return Build(Demo(), log)
}

// Save encodes w as a canonical JSON adventure document.
func Save(w *types.World) ([]byte, error) {
	b, err := json.MarshalIndent(Export(w), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding adventure")
	}
	return b, nil
}

// WriteFile saves w to path as JSON or YAML, chosen by extension.
func WriteFile(path string, w *types.World) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch format {
	case FormatJSON:
		data, err = Save(w)
	case FormatYAML:
		data, err = saveYAML(w)
	default:
		return errors.Wrapf(ErrFormat, "cannot write %s", path)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing adventure %s", path)
	}
	return nil
}

// saveYAML goes through JSON so the YAML keys match the document's json
// tags and omitted fields.
func saveYAML(w *types.World) ([]byte, error) {
	data, err := Save(w)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "encoding adventure")
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "encoding YAML adventure")
	}
	return out, nil
}
