// Package view projects cart state into its display surfaces.
//
// The projection is pure: given the same line items it always yields the
// same snapshot, and the rendered output is never partial or stale because
// the cart re-projects fully after every mutation.
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vinkj/autoshop/internal/shopfront/cart/store"
)

// Badge is the item-count indicator. Hidden when the cart is empty.
type Badge struct {
	Count  int32
	Hidden bool
}

// Line is one rendered cart row.
type Line struct {
	ID        int64
	Name      string
	Quantity  int32
	PriceText string
	TotalText string
}

// Snapshot is the full projection of a cart: badge, total and itemized list.
type Snapshot struct {
	Badge     Badge
	TotalText string
	Lines     []Line
	Empty     bool
}

// Project computes the display snapshot for the given line items.
func Project(items []store.Item) Snapshot {
	var count int32
	var total int64
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		count += item.Quantity
		lineTotal := item.UnitPrice * int64(item.Quantity)
		total += lineTotal
		lines = append(lines, Line{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			PriceText: FormatPrice(item.UnitPrice),
			TotalText: FormatPrice(lineTotal),
		})
	}
	return Snapshot{
		Badge:     Badge{Count: count, Hidden: count == 0},
		TotalText: FormatPrice(total),
		Lines:     lines,
		Empty:     len(items) == 0,
	}
}

// FormatPrice renders an amount in whole shillings, e.g. "KSh 12,500".
func FormatPrice(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "KSh -" + b.String()
	}
	return "KSh " + b.String()
}

// Renderer writes cart projections to an output stream.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a Renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render writes the three surfaces of the projection: badge, itemized list
// (or the empty placeholder) and total.
func (r *Renderer) Render(s Snapshot) {
	if s.Badge.Hidden {
		fmt.Fprintln(r.out, "Cart")
	} else {
		fmt.Fprintf(r.out, "Cart (%d)\n", s.Badge.Count)
	}
	if s.Empty {
		fmt.Fprintln(r.out, "  Your cart is empty")
	} else {
		for _, line := range s.Lines {
			fmt.Fprintf(r.out, "  [%d] %s x %d @ %s = %s\n",
				line.ID, line.Name, line.Quantity, line.PriceText, line.TotalText)
		}
	}
	fmt.Fprintf(r.out, "  Total: %s\n", s.TotalText)
}

// Sync returns a cart change listener that re-renders the full projection
// on every mutation.
func (r *Renderer) Sync() func(items []store.Item) {
	return func(items []store.Item) {
		r.Render(Project(items))
	}
}
