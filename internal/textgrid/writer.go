package textgrid

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Save writes the document to path in the long TextGrid form.
func (d *Document) Save(path string) error {
	return os.WriteFile(path, []byte(d.Marshal()), 0o644)
}

// Marshal renders the document in the long TextGrid form. Interval tiers are
// sorted by onset and the gaps between labelled spans are filled with blank
// intervals, the layout downstream annotation tools expect.
func (d *Document) Marshal() string {
	var b strings.Builder
	b.WriteString("File type = \"ooTextFile\"\n")
	b.WriteString("Object class = \"TextGrid\"\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "xmin = %s\n", num(d.XMin))
	fmt.Fprintf(&b, "xmax = %s\n", num(d.XMax))
	b.WriteString("tiers? <exists>\n")
	fmt.Fprintf(&b, "size = %d\n", len(d.Tiers))
	b.WriteString("item []:\n")
	for i, t := range d.Tiers {
		fmt.Fprintf(&b, "    item [%d]:\n", i+1)
		fmt.Fprintf(&b, "        class = %s\n", quote(t.Class))
		fmt.Fprintf(&b, "        name = %s\n", quote(t.Name))
		xmin, xmax := t.XMin, t.XMax
		if xmax == 0 {
			xmax = d.XMax
		}
		fmt.Fprintf(&b, "        xmin = %s\n", num(xmin))
		fmt.Fprintf(&b, "        xmax = %s\n", num(xmax))
		if t.IsInterval() {
			entries := fillGaps(t.Intervals, xmin, xmax)
			fmt.Fprintf(&b, "        intervals: size = %d\n", len(entries))
			for j, iv := range entries {
				fmt.Fprintf(&b, "        intervals [%d]:\n", j+1)
				fmt.Fprintf(&b, "            xmin = %s\n", num(iv.XMin))
				fmt.Fprintf(&b, "            xmax = %s\n", num(iv.XMax))
				fmt.Fprintf(&b, "            text = %s\n", quote(iv.Text))
			}
			continue
		}
		fmt.Fprintf(&b, "        points: size = %d\n", len(t.Points))
		for j, p := range t.Points {
			fmt.Fprintf(&b, "        points [%d]:\n", j+1)
			fmt.Fprintf(&b, "            number = %s\n", num(p.Number))
			fmt.Fprintf(&b, "            mark = %s\n", quote(p.Mark))
		}
	}
	return b.String()
}

// fillGaps sorts intervals by onset and inserts blank intervals wherever the
// labelled spans leave the tier range uncovered. An empty tier becomes one
// blank interval covering the whole range.
func fillGaps(intervals []Interval, xmin, xmax float64) []Interval {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].XMin < sorted[j].XMin })

	var out []Interval
	cursor := xmin
	for _, iv := range sorted {
		if iv.XMin > cursor {
			out = append(out, Interval{XMin: cursor, XMax: iv.XMin})
		}
		out = append(out, iv)
		if iv.XMax > cursor {
			cursor = iv.XMax
		}
	}
	if cursor < xmax || len(out) == 0 {
		out = append(out, Interval{XMin: cursor, XMax: xmax})
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
