/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Arenaboard Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package columns

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/safehtml"
)

// Kind is the data type of a column value.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDatetime
	KindBool
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDatetime:
		return "datetime"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// DatetimeLayout is the display layout for datetime values.
const DatetimeLayout = "2006-01-02 15:04"

// Value is a single typed cell value. The zero Value is null.
type Value struct {
	kind    Kind
	valid   bool
	text    string
	number  float64
	time    time.Time
	boolean bool
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, valid: true, text: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, valid: true, number: f}
}

// Int returns a numeric value from an integer.
func Int(i int64) Value {
	return Number(float64(i))
}

// Datetime returns a datetime value. A zero time is null.
func Datetime(t time.Time) Value {
	if t.IsZero() {
		return Value{kind: KindDatetime}
	}
	return Value{kind: KindDatetime, valid: true, time: t}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, valid: true, boolean: b}
}

// Null returns a null value of the given kind.
func Null(k Kind) Value {
	return Value{kind: k}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return !v.valid }
func (v Value) Text() string { return v.text }
func (v Value) Number() float64 { return v.number }
func (v Value) Time() time.Time { return v.time }
func (v Value) BoolValue() bool { return v.boolean }

// String returns the display text of the value. Null values display as "".
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindDatetime:
		return v.time.Format(DatetimeLayout)
	case KindBool:
		if v.boolean {
			return "yes"
		}
		return "no"
	default:
		return v.text
	}
}

// Def describes one column of a table of records of type R.
// Key must not contain any of the following characters: & = : ,
type Def[R any] struct {
	Key    string
	Header string
	// HeaderHTML replaces the escaped Header when set.
	HeaderHTML safehtml.HTML
	// Value extracts the underlying value used for search, filters and sorting.
	Value func(R) Value
	// Cell renders the cell. The escaped display text of Value is used when nil.
	Cell       func(R) safehtml.HTML
	Sortable   bool
	Searchable bool
	// Choices lists the discrete filter options. A column with choices is filterable.
	Choices []string
}

// Filterable reports whether the column offers discrete filter choices.
func (d Def[R]) Filterable() bool {
	return len(d.Choices) > 0
}

// ValueOf returns the column value for the record, or null when the column has no extractor.
func (d Def[R]) ValueOf(r R) Value {
	if d.Value == nil {
		return Value{}
	}
	return d.Value(r)
}

// HeaderCell returns the rendered header label.
func (d Def[R]) HeaderCell() safehtml.HTML {
	if d.HeaderHTML.String() != "" {
		return d.HeaderHTML
	}
	return safehtml.HTMLEscaped(d.Header)
}

// RenderCell returns the rendered cell for the record.
func (d Def[R]) RenderCell(r R) safehtml.HTML {
	if d.Cell != nil {
		return d.Cell(r)
	}
	return safehtml.HTMLEscaped(d.ValueOf(r).String())
}

var (
	ErrEmptyKey     = errors.New("column key is empty")
	ErrDuplicateKey = errors.New("duplicate column key")
)

// Set is an ordered, immutable list of column definitions.
type Set[R any] struct {
	defs  []Def[R]
	index map[string]int
}

// NewSet validates the definitions and returns them as a Set.
func NewSet[R any](defs ...Def[R]) (Set[R], error) {
	s := Set[R]{
		defs:  make([]Def[R], len(defs)),
		index: make(map[string]int, len(defs)),
	}
	copy(s.defs, defs)
	for i, d := range s.defs {
		if d.Key == "" {
			return Set[R]{}, fmt.Errorf("column %d: %w", i, ErrEmptyKey)
		}
		if _, exists := s.index[d.Key]; exists {
			return Set[R]{}, fmt.Errorf("column %q: %w", d.Key, ErrDuplicateKey)
		}
		s.index[d.Key] = i
	}
	return s, nil
}

// MustSet is like NewSet but panics on invalid definitions.
// It is intended for column sets declared in code.
func MustSet[R any](defs ...Def[R]) Set[R] {
	s, err := NewSet(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s Set[R]) Len() int {
	return len(s.defs)
}

// At returns the i-th column definition.
func (s Set[R]) At(i int) Def[R] {
	return s.defs[i]
}

// All returns a copy of the definitions in display order.
func (s Set[R]) All() []Def[R] {
	out := make([]Def[R], len(s.defs))
	copy(out, s.defs)
	return out
}

// Keys returns the column keys in display order.
func (s Set[R]) Keys() []string {
	keys := make([]string, len(s.defs))
	for i, d := range s.defs {
		keys[i] = d.Key
	}
	return keys
}

// Lookup returns the definition with the given key.
func (s Set[R]) Lookup(key string) (Def[R], bool) {
	i, ok := s.index[key]
	if !ok {
		return Def[R]{}, false
	}
	return s.defs[i], true
}

// Searchable returns the columns searched by free-text queries.
// When no column is marked searchable every column is searched.
func (s Set[R]) Searchable() []Def[R] {
	var out []Def[R]
	for _, d := range s.defs {
		if d.Searchable {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return s.All()
	}
	return out
}

// Filterable returns the columns that offer discrete filter choices.
func (s Set[R]) Filterable() []Def[R] {
	var out []Def[R]
	for _, d := range s.defs {
		if d.Filterable() {
			out = append(out, d)
		}
	}
	return out
}
