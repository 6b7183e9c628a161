package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
)

// Format identifies a record file encoding.
type Format string

// Supported record file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// document is the object form shared by all three encodings.
type document struct {
	Records []hierarchy.Record `json:"records" yaml:"records" toml:"records"`
}

// FormatFromPath infers the record format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported record file %q (want .json, .yaml, .yml or .toml)", path)
	}
}

// ReadRecords decodes a record list from r. ReadRecords does not close r.
func ReadRecords(r io.Reader, format Format) ([]hierarchy.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var records []hierarchy.Record
	switch format {
	case FormatJSON:
		records, err = decodeJSON(data)
	case FormatYAML:
		records, err = decodeYAML(data)
	case FormatTOML:
		var doc document
		_, err = toml.Decode(string(data), &doc)
		records = doc.Records
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown record format %q", format)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s records", format)
	}
	return records, nil
}

func decodeJSON(data []byte) ([]hierarchy.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []hierarchy.Record
		err := json.Unmarshal(trimmed, &records)
		return records, err
	}
	var doc document
	err := json.Unmarshal(trimmed, &doc)
	return doc.Records, err
}

func decodeYAML(data []byte) ([]hierarchy.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var records []hierarchy.Record
		err := node.Content[0].Decode(&records)
		return records, err
	}
	var doc document
	err := node.Content[0].Decode(&doc)
	return doc.Records, err
}

// ImportRecords reads the record file at path, inferring its format from
// the extension.
func ImportRecords(path string) ([]hierarchy.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeSource, err, "open %s", path)
	}
	defer f.Close()
	return ReadRecords(f, format)
}

// WriteRecords encodes records to w. JSON and YAML are written as a bare
// list, TOML as a "records" array of tables.
func WriteRecords(w io.Writer, records []hierarchy.Record, format Format) error {
	if records == nil {
		records = []hierarchy.Record{}
	}
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(records)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(document{Records: records})
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown record format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// ExportRecords writes records to path atomically, choosing the encoding
// from the extension.
func ExportRecords(path string, records []hierarchy.Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteRecords(&buf, records, format); err != nil {
		return err
	}
	_, err = WriteFileAtomic(path, buf.Bytes())
	return err
}
