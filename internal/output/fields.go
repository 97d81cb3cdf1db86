package output

import (
	"fmt"
	"strings"

	"github.com/example/delog/internal/engine"
)

type Field struct {
	Key    string
	Header string
}

type FieldSelection struct {
	Fields      []Field
	ShowApplied bool
	ShowReason  bool
}

type fieldMeta struct {
	header    string
	isApplied bool
	isReason  bool
}

var fieldRegistry = map[string]fieldMeta{
	"location":    {header: "LOCATION"},
	"file":        {header: "FILE"},
	"line":        {header: "LINE"},
	"method":      {header: "METHOD"},
	"class":       {header: "CLASS"},
	"risk":        {header: "RISK"},
	"preview":     {header: "PREVIEW"},
	"replacement": {header: "REPLACEMENT"},
	"applied":     {header: "APPLIED", isApplied: true},
	"reason":      {header: "REASON", isReason: true},
}

// ResolveFields parses a comma separated field list. An empty list yields the
// default columns; withApplied adds the APPLIED column (write mode).
func ResolveFields(raw string, withApplied bool) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	sel := FieldSelection{}
	if raw == "" {
		keys := []string{"location", "method", "class", "risk", "preview"}
		if withApplied {
			keys = append(keys, "applied")
		}
		sel.Fields = make([]Field, 0, len(keys))
		for _, key := range keys {
			meta := fieldRegistry[key]
			sel.Fields = append(sel.Fields, Field{Key: key, Header: meta.header})
		}
		sel.ShowApplied = withApplied
		return sel, nil
	}

	parts := strings.Split(raw, ",")
	sel.Fields = make([]Field, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
		}
		key := strings.ToLower(name)
		meta, ok := fieldRegistry[key]
		if !ok {
			return FieldSelection{}, fmt.Errorf("unknown field: %s", name)
		}
		sel.Fields = append(sel.Fields, Field{Key: key, Header: meta.header})
		if meta.isApplied {
			sel.ShowApplied = true
		}
		if meta.isReason {
			sel.ShowReason = true
		}
	}
	return sel, nil
}

// Headers returns the column headers for a field list.
func Headers(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Header)
	}
	return out
}

// RowValues formats one item into the selected columns.
func RowValues(it engine.Item, fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, FormatFieldValue(it, f.Key))
	}
	return out
}

// FormatFieldValue renders a single column value for an item.
func FormatFieldValue(it engine.Item, key string) string {
	switch key {
	case "location":
		return fmt.Sprintf("%s:%d", it.File, it.Line)
	case "file":
		return it.File
	case "line":
		return fmt.Sprintf("%d", it.Line)
	case "method":
		return it.Method
	case "class":
		return string(it.Class)
	case "risk":
		if it.Risky {
			return "risky"
		}
		return "safe"
	case "preview":
		return it.Preview
	case "replacement":
		return it.Replacement
	case "applied":
		if it.Applied {
			return "yes"
		}
		return "no"
	case "reason":
		return it.Reason
	default:
		return ""
	}
}
