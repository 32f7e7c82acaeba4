package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/flowlens/pkg/cfg"
	flerrors "github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/observability"
)

// =============================================================================
// CFG Serialization API
// =============================================================================

// MarshalCFG converts g to indented JSON bytes.
func MarshalCFG(g *cfg.Graph, aux Aux) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCFG(&buf, g, aux); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCFG writes g as indented JSON to w.
func WriteCFG(w io.Writer, g *cfg.Graph, aux Aux) error {
	return writeJSON(w, FromCFG(g, aux))
}

// WriteCFGFile writes g as JSON to path. Failing to create or write the file
// is an IO_ERROR.
func WriteCFGFile(path string, g *cfg.Graph, aux Aux) error {
	return writeFile(path, FromCFG(g, aux))
}

// WriteDocumentFile writes an already converted document to path.
func WriteDocumentFile(path string, doc Document) error {
	return writeFile(path, doc)
}

// ReadCFG decodes a JSON document from r and rebuilds the graph. The decoded
// document is returned as well so callers can reach the aux fields.
func ReadCFG(r io.Reader) (*cfg.Graph, Document, error) {
	return readCFG(r, "input")
}

// ReadCFGFile reads the JSON document at path.
func ReadCFGFile(path string) (*cfg.Graph, Document, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, Document{}, err
	}
	defer f.Close()
	return readCFG(f, path)
}

// ReadDocument decodes a document without converting it.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		if flerrors.GetCode(err) != "" {
			return Document{}, err
		}
		return Document{}, flerrors.Wrap(flerrors.ErrCodeInvalidFormat, err, "decode document")
	}
	return doc, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func readCFG(r io.Reader, source string) (*cfg.Graph, Document, error) {
	doc, err := ReadDocument(r)
	if err != nil {
		return nil, Document{}, err
	}
	observability.Codec().OnDecode("json", source, len(doc.Nodes)+len(doc.Edges), doc.Skipped)
	g, err := ToCFG(doc)
	if err != nil {
		return nil, doc, err
	}
	return g, doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return flerrors.Wrap(flerrors.ErrCodeIO, err, "encode")
	}
	return nil
}

func writeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return flerrors.Wrap(flerrors.ErrCodeIO, err, "create %s", path)
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return flerrors.Wrap(flerrors.ErrCodeIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return flerrors.Wrap(flerrors.ErrCodeIO, err, "close %s", path)
	}
	return nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, flerrors.Wrap(flerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, flerrors.Wrap(flerrors.ErrCodeIO, err, "open %s", path)
	}
	return f, nil
}
