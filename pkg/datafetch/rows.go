package datafetch

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/zpiroux/dsutils/entity"
)

// frameBuilder collects fetched rows and builds a frame from them, with the kind of each column
// inferred from its values.
type frameBuilder struct {
	names []string
	rows  [][]any

	// numeric marks columns whose text values are decimals, e.g. SQL Server DECIMAL and MONEY.
	numeric []bool
}

func newFrameBuilder(names []string) *frameBuilder {
	return &frameBuilder{names: names, numeric: make([]bool, len(names))}
}

func (b *frameBuilder) add(values []any) {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = normalize(v, b.numeric[i])
	}
	b.rows = append(b.rows, row)
}

// normalize converts a driver or BigQuery value into a value as returned by entity.Column.Value().
func normalize(v any, numeric bool) any {
	switch v := v.(type) {
	case nil, float64, int64, string, bool, time.Time:
		if s, ok := v.(string); ok && numeric {
			return parseDecimal(s)
		}
		return v
	case []byte:
		if numeric {
			return parseDecimal(string(v))
		}
		return string(v)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case float32:
		return float64(v)
	case interface{ In(*time.Location) time.Time }:
		// Civil dates and datetimes, as UTC
		return v.In(time.UTC)
	case interface{ Float64() (float64, bool) }:
		// Big numerics
		f, _ := v.Float64()
		return f
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}

func parseDecimal(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}

func valueKind(v any) entity.Kind {
	switch v.(type) {
	case float64:
		return entity.KindFloat
	case int64:
		return entity.KindInt
	case string:
		return entity.KindString
	case time.Time:
		return entity.KindTime
	case bool:
		return entity.KindBool
	}
	return entity.KindInvalid
}

func (b *frameBuilder) frame() (*entity.Frame, error) {
	f := &entity.Frame{}
	for j, name := range b.names {
		kind := entity.KindInvalid
		for _, row := range b.rows {
			if row[j] == nil {
				continue
			}
			k := valueKind(row[j])
			switch {
			case kind == entity.KindInvalid || kind == k:
				kind = k
			case (kind == entity.KindInt && k == entity.KindFloat) || (kind == entity.KindFloat && k == entity.KindInt):
				kind = entity.KindFloat
			default:
				return nil, fmt.Errorf("%w: column %q has both %s and %s values", entity.ErrTypeMismatch, name, kind, k)
			}
		}
		if kind == entity.KindInvalid {
			// No values to infer from
			kind = entity.KindString
		}
		c, err := b.column(j, name, kind)
		if err != nil {
			return nil, err
		}
		if err = f.Set(c); err != nil {
			return nil, err
		}
	}
	if f.NumCols() != len(b.names) {
		return nil, fmt.Errorf("%w: duplicate column names in %v", entity.ErrInvalidFrame, b.names)
	}
	return f, nil
}

func (b *frameBuilder) column(j int, name string, kind entity.Kind) (*entity.Column, error) {
	n := len(b.rows)
	c := &entity.Column{Name: name, Kind: kind}
	switch kind {
	case entity.KindFloat:
		c.Floats = make([]float64, n)
	case entity.KindInt:
		c.Ints = make([]int64, n)
	case entity.KindString:
		c.Strings = make([]string, n)
	case entity.KindTime:
		c.Times = make([]time.Time, n)
	case entity.KindBool:
		c.Bools = make([]bool, n)
	}
	for i, row := range b.rows {
		switch v := row[j].(type) {
		case nil:
			if c.Nulls == nil {
				c.Nulls = make([]bool, n)
			}
			c.Nulls[i] = true
			if kind == entity.KindFloat {
				c.Floats[i] = math.NaN()
			}
		case float64:
			c.Floats[i] = v
		case int64:
			if kind == entity.KindFloat {
				c.Floats[i] = float64(v)
			} else {
				c.Ints[i] = v
			}
		case string:
			c.Strings[i] = v
		case time.Time:
			c.Times[i] = v
		case bool:
			c.Bools[i] = v
		default:
			return nil, fmt.Errorf("%w: unsupported value %v in column %q", entity.ErrTypeMismatch, v, name)
		}
	}
	return c, nil
}
