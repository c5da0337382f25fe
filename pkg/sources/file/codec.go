package file

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// decodeYAML reads a sequence of mappings, keeping first-seen key order.
func decodeYAML(data []byte) ([]string, []grid.Row, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("invalid row file: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil, nil
	}

	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, nil, fmt.Errorf("line %d: rows must be a list", seq.Line)
	}

	var names []string
	seen := map[string]bool{}
	rows := make([]grid.Row, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, nil, fmt.Errorf("line %d: each row must be a mapping", item.Line)
		}
		row := make(grid.Row, len(item.Content)/2)
		for i := 0; i+1 < len(item.Content); i += 2 {
			k := item.Content[i].Value
			var v any
			if err := item.Content[i+1].Decode(&v); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", item.Content[i+1].Line, err)
			}
			row[k] = v
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
		rows = append(rows, row)
	}
	return names, rows, nil
}

// encodeYAML writes rows as a sequence of mappings in column order.
func encodeYAML(names []string, rows []grid.Row) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, name := range names {
			v, ok := r[name]
			if !ok {
				continue
			}
			var val yaml.Node
			if err := val.Encode(v); err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", name, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, &val)
		}
		seq.Content = append(seq.Content, m)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeJSON writes rows as an array of objects in column order.
func encodeJSON(names []string, rows []grid.Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, r := range rows {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		first := true
		for _, name := range names {
			v, ok := r[name]
			if !ok {
				continue
			}
			k, _ := json.Marshal(name)
			val, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s: %w", name, err)
			}
			if !first {
				buf.WriteString(", ")
			}
			first = false
			buf.Write(k)
			buf.WriteString(": ")
			buf.Write(val)
		}
		buf.WriteString("}")
	}
	if len(rows) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

// decodeCSV reads a header line and records. Cells that parse as numbers
// become numbers; empty cells are absent.
func decodeCSV(data []byte) ([]string, []grid.Row, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	names := records[0]
	rows := make([]grid.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(grid.Row, len(names))
		for i, name := range names {
			if i >= len(rec) || rec[i] == "" {
				continue
			}
			row[name] = csvValue(rec[i])
		}
		rows = append(rows, row)
	}
	return names, rows, nil
}

func csvValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "xXpPnNiI") {
		return f
	}
	return s
}

func encodeCSV(names []string, rows []grid.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(names); err != nil {
		return nil, err
	}
	rec := make([]string, len(names))
	for _, r := range rows {
		for i, name := range names {
			rec[i] = ""
			if v, ok := r[name]; ok && v != nil {
				rec[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
