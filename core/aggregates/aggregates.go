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

// Package aggregates summarizes the values of a column: counts, extremes, means and
// spreads, depending on the kind of the column.
package aggregates

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/arenaboard/core/columns"
)

// Stat is one named, formatted aggregate.
type Stat struct {
	Name  string
	Value string
}

// State accumulates the non-null values of one column.
type State interface {
	Add(v columns.Value)
	Stats() []Stat
}

// NewState returns an empty state for values of the kind.
func NewState(kind columns.Kind) State {
	switch kind {
	case columns.KindNumber:
		return NewNumericState()
	case columns.KindBool:
		return &BoolState{}
	case columns.KindDatetime:
		return &DatetimeState{}
	default:
		return &TextState{distinct: make(map[string]struct{})}
	}
}

// NumericState derives count, min, max, avg and stddev.
type NumericState struct {
	Count int64
	Sum   float64
	SumSq float64 // for stddev
	Min   float64
	Max   float64
}

func NewNumericState() *NumericState {
	return &NumericState{
		Min: math.MaxFloat64,
		Max: -math.MaxFloat64,
	}
}

func (s *NumericState) Add(v columns.Value) {
	if v.IsNull() {
		return
	}
	n := v.Number()
	s.Count++
	s.Sum += n
	s.SumSq += n * n
	s.Min = math.Min(s.Min, n)
	s.Max = math.Max(s.Max, n)
}

// Avg returns the mean, 0 without values.
func (s *NumericState) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// StdDev returns the population standard deviation.
func (s *NumericState) StdDev() float64 {
	if s.Count == 0 {
		return 0
	}
	mean := s.Avg()
	// Variance = E[X²] - (E[X])²
	variance := s.SumSq/float64(s.Count) - mean*mean
	if variance < 0 {
		// floating point noise
		variance = 0
	}
	return math.Sqrt(variance)
}

func (s *NumericState) Stats() []Stat {
	if s.Count == 0 {
		return []Stat{{"count", "0"}}
	}
	return []Stat{
		{"count", strconv.FormatInt(s.Count, 10)},
		{"min", formatNumber(s.Min)},
		{"max", formatNumber(s.Max)},
		{"avg", formatNumber(s.Avg())},
		{"stddev", formatNumber(s.StdDev())},
	}
}

// BoolState counts true values.
type BoolState struct {
	Count int64
	True  int64
}

func (s *BoolState) Add(v columns.Value) {
	if v.IsNull() {
		return
	}
	s.Count++
	if v.BoolValue() {
		s.True++
	}
}

// Ratio returns the share of true values, 0 without values.
func (s *BoolState) Ratio() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.True) / float64(s.Count)
}

func (s *BoolState) Stats() []Stat {
	return []Stat{
		{"count", strconv.FormatInt(s.Count, 10)},
		{"yes", strconv.FormatInt(s.True, 10)},
		{"no", strconv.FormatInt(s.Count-s.True, 10)},
		{"ratio", fmt.Sprintf("%.1f%%", s.Ratio()*100)},
	}
}

// TextState counts values and distinct values.
type TextState struct {
	Count    int64
	distinct map[string]struct{}
}

func (s *TextState) Add(v columns.Value) {
	if v.IsNull() {
		return
	}
	if s.distinct == nil {
		s.distinct = make(map[string]struct{})
	}
	s.Count++
	s.distinct[v.String()] = struct{}{}
}

// Distinct returns the number of different values.
func (s *TextState) Distinct() int {
	return len(s.distinct)
}

func (s *TextState) Stats() []Stat {
	return []Stat{
		{"count", strconv.FormatInt(s.Count, 10)},
		{"distinct", strconv.Itoa(s.Distinct())},
	}
}

// DatetimeState derives count, earliest, latest and span.
type DatetimeState struct {
	Count int64
	Min   time.Time
	Max   time.Time
}

func (s *DatetimeState) Add(v columns.Value) {
	if v.IsNull() {
		return
	}
	t := v.Time()
	if s.Count == 0 || t.Before(s.Min) {
		s.Min = t
	}
	if s.Count == 0 || t.After(s.Max) {
		s.Max = t
	}
	s.Count++
}

// Span returns the time between the earliest and latest values.
func (s *DatetimeState) Span() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Max.Sub(s.Min)
}

func (s *DatetimeState) Stats() []Stat {
	if s.Count == 0 {
		return []Stat{{"count", "0"}}
	}
	return []Stat{
		{"count", strconv.FormatInt(s.Count, 10)},
		{"earliest", s.Min.Format(columns.DatetimeLayout)},
		{"latest", s.Max.Format(columns.DatetimeLayout)},
		{"span", formatDuration(s.Span())},
	}
}

// Summary is the aggregate of one column.
type Summary struct {
	Column string // column header
	Nulls  int
	Stats  []Stat
}

// Summarize aggregates the column over the rows. The kind of the first value
// selects the state, text when there are no rows.
func Summarize[R any](rows []R, def columns.Def[R]) Summary {
	kind := columns.KindText
	if len(rows) > 0 {
		kind = def.ValueOf(rows[0]).Kind()
	}

	state := NewState(kind)
	sum := Summary{Column: def.Header}
	for _, r := range rows {
		v := def.ValueOf(r)
		if v.IsNull() {
			sum.Nulls++
			continue
		}
		state.Add(v)
	}
	sum.Stats = state.Stats()
	return sum
}

// SummarizeKeys summarizes the named columns, skipping unknown keys.
func SummarizeKeys[R any](rows []R, cols columns.Set[R], keys ...string) []Summary {
	var out []Summary
	for _, key := range keys {
		if def, ok := cols.Lookup(key); ok {
			out = append(out, Summarize(rows, def))
		}
	}
	return out
}

// formatNumber rounds to two decimals and drops trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// formatDuration formats a span in the largest unit that fits.
func formatDuration(d time.Duration) string {
	hours := d.Hours()
	switch {
	case d == 0:
		return "0"
	case hours >= 24:
		return fmt.Sprintf("%.1fd", hours/24)
	case hours >= 1:
		return fmt.Sprintf("%.1fh", hours)
	case d.Minutes() >= 1:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
