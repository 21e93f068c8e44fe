package entity

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the value type of a Column.
type Kind int

const (
	KindInvalid Kind = iota
	KindFloat
	KindInt
	KindString
	KindTime
	KindBool
)

var kindName = map[Kind]string{
	KindInvalid: "invalid",
	KindFloat:   "float",
	KindInt:     "int",
	KindString:  "string",
	KindTime:    "time",
	KindBool:    "bool",
}

func (k Kind) String() string {
	name, ok := kindName[k]
	if !ok {
		name = kindName[KindInvalid]
	}
	return name
}

// Column holds the values of a single named column. Only the value slice matching Kind
// is populated. Fields are exported to allow gob encoding of frames.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Ints    []int64
	Strings []string
	Times   []time.Time
	Bools   []bool

	// Nulls marks missing values, where nil means that no values are missing.
	// For float columns NaN is regarded as missing as well.
	Nulls []bool
}

func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindFloat, Floats: values}
}

func NewIntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindInt, Ints: values}
}

func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindString, Strings: values}
}

func NewTimeColumn(name string, values []time.Time) *Column {
	return &Column{Name: name, Kind: KindTime, Times: values}
}

func NewBoolColumn(name string, values []bool) *Column {
	return &Column{Name: name, Kind: KindBool, Bools: values}
}

// WithNulls sets the null mask of the column and returns it.
func (c *Column) WithNulls(nulls []bool) *Column {
	c.Nulls = nulls
	return c
}

func (c *Column) Len() int {
	switch c.Kind {
	case KindFloat:
		return len(c.Floats)
	case KindInt:
		return len(c.Ints)
	case KindString:
		return len(c.Strings)
	case KindTime:
		return len(c.Times)
	case KindBool:
		return len(c.Bools)
	}
	return 0
}

func (c *Column) IsNull(i int) bool {
	if c.Nulls != nil && c.Nulls[i] {
		return true
	}
	return c.Kind == KindFloat && math.IsNaN(c.Floats[i])
}

// HasNulls reports if any value in the column is missing.
func (c *Column) HasNulls() bool {
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			return true
		}
	}
	return false
}

// Value returns the value at row i as float64, int64, string, time.Time or bool,
// or nil if the value is missing.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.Kind {
	case KindFloat:
		return c.Floats[i]
	case KindInt:
		return c.Ints[i]
	case KindString:
		return c.Strings[i]
	case KindTime:
		return c.Times[i]
	case KindBool:
		return c.Bools[i]
	}
	return nil
}

func (c *Column) IsNumeric() bool {
	return c.Kind == KindFloat || c.Kind == KindInt
}

// Float returns the value at row i as float64 for numeric columns, with NaN for missing values.
func (c *Column) Float(i int) float64 {
	if c.IsNull(i) {
		return math.NaN()
	}
	switch c.Kind {
	case KindFloat:
		return c.Floats[i]
	case KindInt:
		return float64(c.Ints[i])
	}
	return math.NaN()
}

// NumericValues returns all values of a numeric column as float64, with NaN for missing values.
func (c *Column) NumericValues() ([]float64, error) {
	if !c.IsNumeric() {
		return nil, TypeMismatch(c, "numeric")
	}
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out, nil
}

// Key returns a canonical string for the value at row i, usable as map key when grouping
// values. A missing value never shares its key with a present one.
func (c *Column) Key(i int) string {
	return ValueKey(c.Value(i))
}

// ValueKey returns the grouping key of a value as returned by Column.Value(), see Column.Key.
func ValueKey(v any) string {
	if v == nil {
		return "\x00"
	}
	return "\x01" + FormatValue(v)
}

// Copy returns a deep copy of the column.
func (c *Column) Copy() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Ints != nil {
		out.Ints = append([]int64(nil), c.Ints...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	if c.Times != nil {
		out.Times = append([]time.Time(nil), c.Times...)
	}
	if c.Bools != nil {
		out.Bools = append([]bool(nil), c.Bools...)
	}
	if c.Nulls != nil {
		out.Nulls = append([]bool(nil), c.Nulls...)
	}
	return out
}

// FormatValue returns the string form of a value as returned by Column.Value(), with "" for nil.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		if v == 0 {
			// -0 and 0 are the same value
			v = 0
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// CompareValues orders two non-nil values of the same kind, as returned by Column.Value().
// Values of different types are ordered by their string form.
func CompareValues(a, b any) int {
	switch a := a.(type) {
	case float64:
		if b, ok := b.(float64); ok {
			return compareOrdered(a, b)
		}
	case int64:
		if b, ok := b.(int64); ok {
			return compareOrdered(a, b)
		}
	case string:
		if b, ok := b.(string); ok {
			return compareOrdered(a, b)
		}
	case time.Time:
		if b, ok := b.(time.Time); ok {
			return a.Compare(b)
		}
	case bool:
		if b, ok := b.(bool); ok {
			switch {
			case a == b:
				return 0
			case !a:
				return -1
			default:
				return 1
			}
		}
	}
	return compareOrdered(FormatValue(a), FormatValue(b))
}

func compareOrdered[T float64 | int64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Frame is a two-dimensional labeled table with named, typed columns of equal length.
// Frames are treated as values by transformers, which always return a new Frame.
type Frame struct {
	Columns []*Column
}

// NewFrame creates a frame from the provided columns, which must have unique names and
// equal lengths.
func NewFrame(cols ...*Column) (*Frame, error) {
	f := &Frame{}
	for _, c := range cols {
		if err := f.Set(c); err != nil {
			return nil, err
		}
	}
	if len(f.Columns) != len(cols) {
		return nil, fmt.Errorf("%w: duplicate column names", ErrInvalidFrame)
	}
	return f, nil
}

// MustNewFrame is like NewFrame but panics on error. Intended for tests and static data.
func MustNewFrame(cols ...*Column) *Frame {
	f, err := NewFrame(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Frame) NumRows() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return f.Columns[0].Len()
}

func (f *Frame) NumCols() int {
	return len(f.Columns)
}

func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column.
func (f *Frame) Index(name string) (int, bool) {
	for i, c := range f.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns the named column (not a copy).
func (f *Frame) Column(name string) (*Column, error) {
	i, ok := f.Index(name)
	if !ok {
		return nil, ColumnNotFound(name)
	}
	return f.Columns[i], nil
}

// HasColumns returns an ErrColumnNotFound error listing all names not present in the frame.
func (f *Frame) HasColumns(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := f.Index(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return ColumnNotFound(missing...)
	}
	return nil
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	out := &Frame{Columns: make([]*Column, len(f.Columns))}
	for i, c := range f.Columns {
		out.Columns[i] = c.Copy()
	}
	return out
}

// Select returns a new frame with copies of the named columns, in the provided order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	if err := f.HasColumns(names...); err != nil {
		return nil, err
	}
	out := &Frame{}
	for _, name := range names {
		c, _ := f.Column(name)
		if err := out.Set(c.Copy()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Drop returns a new frame without the named columns. All names must exist.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	if err := f.HasColumns(names...); err != nil {
		return nil, err
	}
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	out := &Frame{}
	for _, c := range f.Columns {
		if !drop[c.Name] {
			out.Columns = append(out.Columns, c.Copy())
		}
	}
	return out, nil
}

// Set adds the column to the frame, replacing (at the same position) any existing column
// with the same name. The frame is modified in place.
func (f *Frame) Set(c *Column) error {
	if c == nil || c.Kind == KindInvalid {
		return fmt.Errorf("%w: column with invalid kind", ErrInvalidFrame)
	}
	if c.Nulls != nil && len(c.Nulls) != c.Len() {
		return fmt.Errorf("%w: column %q null mask length %d, want %d", ErrInvalidFrame, c.Name, len(c.Nulls), c.Len())
	}
	if i, ok := f.Index(c.Name); ok {
		if len(f.Columns) > 1 && c.Len() != f.NumRows() {
			return fmt.Errorf("%w: column %q has %d rows, want %d", ErrInvalidFrame, c.Name, c.Len(), f.NumRows())
		}
		f.Columns[i] = c
		return nil
	}
	if len(f.Columns) > 0 && c.Len() != f.NumRows() {
		return fmt.Errorf("%w: column %q has %d rows, want %d", ErrInvalidFrame, c.Name, c.Len(), f.NumRows())
	}
	f.Columns = append(f.Columns, c)
	return nil
}

// Row returns the values of row i, in column order, as returned by Column.Value().
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.Columns))
	for j, c := range f.Columns {
		row[j] = c.Value(i)
	}
	return row
}
