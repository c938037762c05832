package columns

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/goliatone/go-tablegen/pkg/model"
)

const (
	widthBudget = 100.0
	// maxMeasure caps one cell's contribution so a single long note does not
	// starve the other columns.
	maxMeasure = 60
	// MinAutoWidth is the width every auto column gets when explicit widths
	// leave less than MinAutoWidth per auto column.
	MinAutoWidth = 5.0
)

// AssignWidths gives every auto column (Width == 0) a percentage proportional
// to its widest content, measured in terminal cells so wide CJK text counts
// double. Explicit widths are deducted from the budget first. Results are
// rounded to two decimals and the rounding remainder goes to the widest auto
// column, so explicit plus auto widths sum to 100 whenever the explicit
// widths fit. When they do not leave MinAutoWidth per auto column, each auto
// column gets MinAutoWidth and the total exceeds 100.
func AssignWidths(cols []model.Column, rows []model.Record) []model.Column {
	out := append([]model.Column{}, cols...)

	budget := widthBudget
	var auto []int
	for i, col := range out {
		if col.Width > 0 {
			budget -= col.Width
			continue
		}
		auto = append(auto, i)
	}
	if len(auto) == 0 {
		return out
	}
	if budget < MinAutoWidth*float64(len(auto)) {
		for _, idx := range auto {
			out[idx].Width = MinAutoWidth
		}
		return out
	}

	measures := make([]int, len(auto))
	total := 0
	widest := 0
	for n, idx := range auto {
		m := measure(out[idx], rows)
		measures[n] = m
		total += m
		if m > measures[widest] {
			widest = n
		}
	}

	assigned := 0.0
	for n, idx := range auto {
		share := round2(budget * float64(measures[n]) / float64(total))
		out[idx].Width = share
		assigned += share
	}
	out[auto[widest]].Width = round2(out[auto[widest]].Width + budget - assigned)
	return out
}

func measure(col model.Column, rows []model.Record) int {
	best := displayWidth(col.DisplayLabel())
	for _, row := range rows {
		value, ok := row.Get(col.Key)
		if !ok {
			continue
		}
		if w := displayWidth(model.Stringify(value)); w > best {
			best = w
		}
	}
	if best < 1 {
		best = 1
	}
	if best > maxMeasure {
		best = maxMeasure
	}
	return best
}

func displayWidth(text string) int {
	best := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > best {
			best = w
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
