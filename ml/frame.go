package ml

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrColumnType    = errors.New("unexpected column type")
)

// Frame is a single row of named columns. Values are float64 or string.
type Frame struct {
	columns []string
	values  map[string]any
}

func NewFrame() Frame {
	return Frame{values: make(map[string]any)}
}

func (f *Frame) Set(name string, value any) {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[name]; !ok {
		f.columns = append(f.columns, name)
	}
	switch v := value.(type) {
	case int:
		f.values[name] = float64(v)
	case int64:
		f.values[name] = float64(v)
	case float32:
		f.values[name] = float64(v)
	default:
		f.values[name] = value
	}
}

func (f Frame) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f Frame) Float(name string) (float64, error) {
	v, ok := f.values[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want number", ErrColumnType, name, v)
	}
	return n, nil
}

func (f Frame) String(name string) (string, error) {
	v, ok := f.values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrColumnType, name, v)
	}
	return s, nil
}

func (f *Frame) Drop(name string) {
	if _, ok := f.values[name]; !ok {
		return
	}
	delete(f.values, name)
	for i, c := range f.columns {
		if c == name {
			f.columns = append(f.columns[:i:i], f.columns[i+1:]...)
			break
		}
	}
}

func (f Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

func (f Frame) Clone() Frame {
	out := Frame{
		columns: append([]string(nil), f.columns...),
		values:  make(map[string]any, len(f.values)),
	}
	for k, v := range f.values {
		out.values[k] = v
	}
	return out
}
