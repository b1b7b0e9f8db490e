package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MarshalResult converts a layout result to indented JSON bytes.
func MarshalResult(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteResult(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteResultFile writes a layout result to a JSON file.
func WriteResultFile(r *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(r, f)
}

// WriteResult writes a layout result as JSON. Empty node and edge lists are
// written as [] rather than null.
func WriteResult(r *Result, w io.Writer) error {
	out := *r
	if out.Nodes == nil {
		out.Nodes = []PositionedNode{}
	}
	if out.Edges == nil {
		out.Edges = []StyledEdge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadResultFile reads a layout result written by WriteResultFile.
func ReadResultFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadResult(f)
}

// ReadResult decodes a JSON layout result.
func ReadResult(r io.Reader) (*Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &res, nil
}
