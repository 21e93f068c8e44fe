package entity

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FrameFromJSON creates a frame from a JSON array of records, e.g. [{"a":1,"b":"x"},{"a":2,"b":"y"}].
// Column order is the order in which keys are first seen. Kinds are inferred from the values:
// integral numbers give int columns, other numbers float columns, booleans bool columns, strings
// time columns if all of them are RFC 3339 timestamps and string columns otherwise.
// Missing keys and JSON null are missing values.
func FrameFromJSON(data []byte) (*Frame, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrInvalidFrame)
	}
	records := gjson.ParseBytes(data)
	if !records.IsArray() {
		return nil, fmt.Errorf("%w: JSON data must be an array of records", ErrInvalidFrame)
	}

	var (
		names []string
		seen  = make(map[string]bool)
		rows  []map[string]gjson.Result
		err   error
	)
	for _, record := range records.Array() {
		if !record.IsObject() {
			return nil, fmt.Errorf("%w: record is not a JSON object: %s", ErrInvalidFrame, record.Raw)
		}
		row := make(map[string]gjson.Result)
		record.ForEach(func(key, value gjson.Result) bool {
			if !seen[key.String()] {
				seen[key.String()] = true
				names = append(names, key.String())
			}
			row[key.String()] = value
			return true
		})
		rows = append(rows, row)
	}

	f := &Frame{}
	for _, name := range names {
		values := make([]gjson.Result, len(rows))
		for i, row := range rows {
			values[i] = row[name]
		}
		var c *Column
		if c, err = columnFromJSON(name, values); err != nil {
			return nil, err
		}
		if err = f.Set(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func columnFromJSON(name string, values []gjson.Result) (*Column, error) {
	kind := KindInvalid
	for _, v := range values {
		var k Kind
		switch v.Type {
		case gjson.Null:
			continue
		case gjson.Number:
			k = KindInt
			if strings.ContainsAny(v.Raw, ".eE") {
				k = KindFloat
			}
		case gjson.String:
			k = KindTime
			if _, err := time.Parse(time.RFC3339Nano, v.Str); err != nil {
				k = KindString
			}
		case gjson.True, gjson.False:
			k = KindBool
		default:
			return nil, fmt.Errorf("%w: unsupported JSON value in column %q: %s", ErrTypeMismatch, name, v.Raw)
		}
		kind = mergeKinds(kind, k)
		if kind == KindInvalid {
			return nil, fmt.Errorf("%w: mixed value types in column %q", ErrTypeMismatch, name)
		}
	}
	if kind == KindInvalid {
		// Only missing values, keep as a string column.
		kind = KindString
	}

	n := len(values)
	c := &Column{Name: name, Kind: kind, Nulls: make([]bool, n)}
	switch kind {
	case KindFloat:
		c.Floats = make([]float64, n)
	case KindInt:
		c.Ints = make([]int64, n)
	case KindString:
		c.Strings = make([]string, n)
	case KindTime:
		c.Times = make([]time.Time, n)
	case KindBool:
		c.Bools = make([]bool, n)
	}
	for i, v := range values {
		if v.Type == gjson.Null {
			c.Nulls[i] = true
			if kind == KindFloat {
				c.Floats[i] = math.NaN()
			}
			continue
		}
		switch kind {
		case KindFloat:
			c.Floats[i] = v.Float()
		case KindInt:
			c.Ints[i] = v.Int()
		case KindString:
			c.Strings[i] = v.String()
		case KindTime:
			c.Times[i], _ = time.Parse(time.RFC3339Nano, v.Str)
		case KindBool:
			c.Bools[i] = v.Bool()
		}
	}
	if !c.HasNulls() {
		c.Nulls = nil
	}
	return c, nil
}

// mergeKinds returns the kind able to hold both a and b, or KindInvalid if none.
func mergeKinds(a, b Kind) Kind {
	switch {
	case a == KindInvalid || a == b:
		return b
	case (a == KindInt && b == KindFloat) || (a == KindFloat && b == KindInt):
		return KindFloat
	case (a == KindTime && b == KindString) || (a == KindString && b == KindTime):
		return KindString
	}
	return KindInvalid
}

// JSON returns the frame as a JSON array of records, with keys in column order.
// Missing values, NaN and infinite floats are written as null, and times in RFC 3339 format.
// The output is deterministic for a given frame.
func (f *Frame) JSON() ([]byte, error) {
	var (
		buf bytes.Buffer
		err error
	)
	buf.WriteByte('[')
	for i := 0; i < f.NumRows(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		record := []byte("{}")
		for _, c := range f.Columns {
			record, err = sjson.SetBytes(record, keyPath(c.Name), jsonValue(c, i))
			if err != nil {
				return nil, fmt.Errorf("could not encode column %q row %d: %w", c.Name, i, err)
			}
		}
		buf.Write(record)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func jsonValue(c *Column, i int) any {
	v := c.Value(i)
	switch v := v.(type) {
	case float64:
		if math.IsInf(v, 0) {
			return nil
		}
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// keyPath escapes a column name for usage as a single sjson object key path component.
func keyPath(name string) string {
	var sb strings.Builder
	if name != "" && strings.Trim(name, "0123456789") == "" {
		// Force numeric names to be treated as object keys.
		sb.WriteByte(':')
	}
	for _, r := range name {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// WriteCSV writes the frame as CSV with a header row. Missing values are written as empty fields.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names()); err != nil {
		return err
	}
	record := make([]string, f.NumCols())
	for i := 0; i < f.NumRows(); i++ {
		for j, c := range f.Columns {
			record[j] = FormatValue(c.Value(i))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
