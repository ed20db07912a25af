package ml

import (
	"errors"
	"fmt"
)

var ErrUnknownCategory = errors.New("unknown category")

const (
	HandleUnknownError  = "error"
	HandleUnknownIgnore = "ignore"
)

// OneHotEncoder replaces a string column with one indicator column per
// category, named <column>_<category>.
type OneHotEncoder struct {
	Column        string
	Categories    []string
	DropFirst     bool
	HandleUnknown string
}

func (e *OneHotEncoder) OutputColumns() []string {
	cats := e.Categories
	if e.DropFirst && len(cats) > 0 {
		cats = cats[1:]
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = e.Column + "_" + c
	}
	return names
}

func (e *OneHotEncoder) Transform(frame Frame) (Frame, error) {
	value, err := frame.String(e.Column)
	if err != nil {
		return Frame{}, err
	}

	known := false
	for _, c := range e.Categories {
		if c == value {
			known = true
			break
		}
	}
	if !known && e.HandleUnknown != HandleUnknownIgnore {
		return Frame{}, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, e.Column, value)
	}

	out := frame.Clone()
	out.Drop(e.Column)
	for _, name := range e.OutputColumns() {
		indicator := 0.0
		if name == e.Column+"_"+value {
			indicator = 1
		}
		out.Set(name, indicator)
	}
	return out, nil
}
