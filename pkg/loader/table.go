package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dtnitsch/referendum-map/models"
)

// table is a delimited file with its header resolved against the configured
// column names.
type table struct {
	name    string
	columns map[string]int // logical field -> column index
	headers map[string]string
	rows    []row
}

type row struct {
	line   int
	fields []string
}

// value returns the trimmed content of a logical field.
func (t *table) value(r row, field string) string {
	idx, ok := t.columns[field]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func decoderFor(name string) (*encoding.Decoder, error) {
	switch name {
	case "", "utf-8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "latin1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// parseTable decodes data and checks that every required field has a header.
func parseTable(name string, data []byte, enc string, tc models.TableConfig, required []string) (*table, error) {
	dec, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), dec))
	r.Comma = []rune(tc.Delimiter)[0]
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Table: name, Missing: headerNames(tc, required)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", name, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	t := &table{
		name:    name,
		columns: make(map[string]int, len(required)),
		headers: make(map[string]string, len(required)),
	}
	var missing []string
	for _, field := range required {
		h := headerName(tc, field)
		idx, ok := index[h]
		if !ok {
			missing = append(missing, h)
			continue
		}
		t.columns[field] = idx
		t.headers[field] = h
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Table: name, Missing: missing}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		line, _ := r.FieldPos(0)
		t.rows = append(t.rows, row{line: line, fields: rec})
	}

	return t, nil
}

func headerName(tc models.TableConfig, field string) string {
	if h, ok := tc.Columns[field]; ok && h != "" {
		return h
	}
	return field
}

func headerNames(tc models.TableConfig, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = headerName(tc, f)
	}
	return out
}
