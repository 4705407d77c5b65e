package textgrid

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Read parses the annotation file at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TextGrid bytes. Both the long (indented "key = value") and
// the short (bare values) form are accepted; values are pulled one at a time
// so files mixing the two conventions still parse.
func Parse(data []byte) (*Document, error) {
	text := strings.TrimPrefix(string(data), "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	c := &cursor{lines: strings.Split(text, "\n")}

	if err := c.expectHeader(); err != nil {
		return nil, err
	}

	doc := &Document{}
	var err error
	if doc.XMin, err = c.nextNumber(); err != nil {
		return nil, fmt.Errorf("document xmin: %w", err)
	}
	if doc.XMax, err = c.nextNumber(); err != nil {
		return nil, fmt.Errorf("document xmax: %w", err)
	}
	exists, err := c.nextFlag()
	if err != nil {
		return nil, fmt.Errorf("tiers flag: %w", err)
	}
	if !exists {
		return doc, nil
	}
	size, err := c.nextNumber()
	if err != nil {
		return nil, fmt.Errorf("tier count: %w", err)
	}
	for i := 0; i < int(size); i++ {
		tier, err := c.readTier()
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i+1, err)
		}
		doc.Tiers = append(doc.Tiers, tier)
	}
	return doc, nil
}

// cursor walks annotation lines, pulling the next numeric or quoted value
// and skipping the structural lines of the long form.
type cursor struct {
	lines []string
	pos   int
}

func (c *cursor) expectHeader() error {
	ft, err := c.nextString()
	if err != nil || ft != "ooTextFile" {
		return fmt.Errorf("not an ooTextFile")
	}
	oc, err := c.nextString()
	if err != nil || oc != "TextGrid" {
		return fmt.Errorf("not a TextGrid object")
	}
	return nil
}

// nextNumber returns the next numeric value: the right side of a "key = v"
// line or a bare number line. Anything else is structural and skipped.
func (c *cursor) nextNumber() (float64, error) {
	for c.pos < len(c.lines) {
		line := strings.TrimSpace(c.lines[c.pos])
		c.pos++
		if line == "" {
			continue
		}
		if _, rhs, ok := strings.Cut(line, "="); ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(rhs), 64); err == nil {
				return v, nil
			}
			continue
		}
		if v, err := strconv.ParseFloat(line, 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unexpected end of file looking for a number")
}

// nextFlag consumes the tiers? marker, present in both forms.
func (c *cursor) nextFlag() (bool, error) {
	for c.pos < len(c.lines) {
		line := strings.TrimSpace(c.lines[c.pos])
		c.pos++
		if strings.Contains(line, "<exists>") {
			return true, nil
		}
		if strings.Contains(line, "<absent>") {
			return false, nil
		}
	}
	return false, fmt.Errorf("missing tiers flag")
}

// nextString returns the next quoted value, which may span lines. A doubled
// quote inside the text is an escaped quote.
func (c *cursor) nextString() (string, error) {
	for c.pos < len(c.lines) {
		line := c.lines[c.pos]
		c.pos++
		start := strings.Index(line, `"`)
		if start < 0 {
			continue
		}
		var b strings.Builder
		rest := line[start+1:]
		for {
			i := 0
			closed := false
			for i < len(rest) {
				ch := rest[i]
				if ch == '"' {
					if i+1 < len(rest) && rest[i+1] == '"' {
						b.WriteByte('"')
						i += 2
						continue
					}
					closed = true
					break
				}
				b.WriteByte(ch)
				i++
			}
			if closed {
				return b.String(), nil
			}
			if c.pos >= len(c.lines) {
				return "", fmt.Errorf("unterminated string")
			}
			b.WriteByte('\n')
			rest = c.lines[c.pos]
			c.pos++
		}
	}
	return "", fmt.Errorf("unexpected end of file looking for a string")
}

func (c *cursor) readTier() (*Tier, error) {
	class, err := c.nextString()
	if err != nil {
		return nil, fmt.Errorf("class: %w", err)
	}
	name, err := c.nextString()
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	t := &Tier{Class: class, Name: name}
	if t.XMin, err = c.nextNumber(); err != nil {
		return nil, fmt.Errorf("xmin: %w", err)
	}
	if t.XMax, err = c.nextNumber(); err != nil {
		return nil, fmt.Errorf("xmax: %w", err)
	}
	size, err := c.nextNumber()
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	if t.IsInterval() {
		for i := 0; i < int(size); i++ {
			var iv Interval
			if iv.XMin, err = c.nextNumber(); err != nil {
				return nil, fmt.Errorf("interval %d xmin: %w", i+1, err)
			}
			if iv.XMax, err = c.nextNumber(); err != nil {
				return nil, fmt.Errorf("interval %d xmax: %w", i+1, err)
			}
			if iv.Text, err = c.nextString(); err != nil {
				return nil, fmt.Errorf("interval %d text: %w", i+1, err)
			}
			t.Intervals = append(t.Intervals, iv)
		}
		return t, nil
	}
	// Point tiers hold number/mark pairs. Unknown classes are read the same
	// way so the cursor stays aligned for the following tiers.
	for i := 0; i < int(size); i++ {
		var p Point
		if p.Number, err = c.nextNumber(); err != nil {
			return nil, fmt.Errorf("point %d number: %w", i+1, err)
		}
		if p.Mark, err = c.nextString(); err != nil {
			return nil, fmt.Errorf("point %d mark: %w", i+1, err)
		}
		t.Points = append(t.Points, p)
	}
	return t, nil
}
