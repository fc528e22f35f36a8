package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"resdb-tools/internal/record"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s (expected json|text)", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteText writes a human-oriented form. The {"data": ...} envelope is
// unwrapped; values without a text form fall back to indented JSON.
func WriteText(w io.Writer, v any) error {
	if m, ok := v.(map[string]any); ok {
		if d, ok := m["data"]; ok {
			v = d
		}
	}
	switch t := v.(type) {
	case string:
		_, err := fmt.Fprintln(w, t)
		return err
	case record.Record:
		return writeRecordText(w, t)
	case []record.Record:
		return writeRecordTable(w, t)
	default:
		return WriteJSON(w, v, true)
	}
}

func writeRecordText(w io.Writer, r record.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"id", r.Identity().String()},
		{"kind", string(r.Kind)},
		{"name", r.Name},
		{"path", r.Path},
	}
	if r.AssetURI != "" {
		rows = append(rows, [2]string{"asset", r.AssetURI})
	}
	if r.ThumbnailURI != "" {
		rows = append(rows, [2]string{"thumbnail", r.ThumbnailURI})
	}
	if len(r.Tags) > 0 {
		rows = append(rows, [2]string{"tags", strings.Join(r.Tags, ", ")})
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeRecordTable(w io.Writer, recs []record.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range recs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Kind, r.Name, r.Identity()); err != nil {
			return err
		}
	}
	return tw.Flush()
}
