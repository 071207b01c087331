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

package views

import (
	"math"

	"github.com/google/arenaboard/core/aggregates"
	"github.com/google/arenaboard/core/columns"
)

// Point is one labelled value of a chart series.
type Point struct {
	Label string
	Value float64
}

// Chart is a titled series rendered as horizontal bars.
type Chart struct {
	Title string
	Bars  []Bar
	Empty bool
}

// Bar is one bar of a chart, scaled against the largest value of the series.
type Bar struct {
	Label  string
	Value  string
	Max    int
	Scaled int // 0..Max
}

// StatsViewModel is the charts page.
type StatsViewModel struct {
	Title     string
	UserName  string
	Charts    []Chart
	Summaries []aggregates.Summary
	Errors    []string // Charts whose data could not be fetched
}

// BuildChart scales the series into bars.
func BuildChart(title string, series []Point) Chart {
	const barMax = 100

	chart := Chart{Title: title, Empty: len(series) == 0}
	var largest float64
	for _, p := range series {
		largest = math.Max(largest, p.Value)
	}
	for _, p := range series {
		scaled := 0
		if largest > 0 {
			scaled = int(math.Round(p.Value / largest * barMax))
		}
		chart.Bars = append(chart.Bars, Bar{
			Label:  p.Label,
			Value:  columns.Number(p.Value).String(),
			Max:    barMax,
			Scaled: scaled,
		})
	}
	return chart
}

// CountBy counts the records per display value of the column. Columns with choices
// list every choice in order, others list values in order of first appearance.
// Unknown columns yield no points.
func CountBy[R any](rows []R, cols columns.Set[R], key string) []Point {
	def, ok := cols.Lookup(key)
	if !ok {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, choice := range def.Choices {
		if _, seen := counts[choice]; !seen {
			counts[choice] = 0
			order = append(order, choice)
		}
	}
	for _, r := range rows {
		label := def.ValueOf(r).String()
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	points := make([]Point, 0, len(order))
	for _, label := range order {
		points = append(points, Point{Label: label, Value: float64(counts[label])})
	}
	return points
}

// TopN returns up to n points of the records, labelled and valued by the columns, in
// the order given.
func TopN[R any](rows []R, cols columns.Set[R], labelKey, valueKey string, n int) []Point {
	label, ok := cols.Lookup(labelKey)
	if !ok {
		return nil
	}
	value, ok := cols.Lookup(valueKey)
	if !ok {
		return nil
	}
	var points []Point
	for _, r := range rows {
		if n > 0 && len(points) == n {
			break
		}
		v := value.ValueOf(r)
		if v.IsNull() || v.Kind() != columns.KindNumber {
			continue
		}
		points = append(points, Point{Label: label.ValueOf(r).String(), Value: v.Number()})
	}
	return points
}
