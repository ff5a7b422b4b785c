package extraction

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Result maps every catalog label to its extracted value. Labels that were
// not found, or whose figure could not be parsed, hold zero.
type Result struct {
	labels []string
	values map[string]int64
}

// Get returns the value for label and whether label belongs to the catalog.
func (r Result) Get(label string) (int64, bool) {
	v, ok := r.values[label]
	return v, ok
}

// Labels returns the result's labels in catalog order.
func (r Result) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Values returns the values in catalog order.
func (r Result) Values() []int64 {
	out := make([]int64, len(r.labels))
	for i, label := range r.labels {
		out[i] = r.values[label]
	}
	return out
}

// Len returns the number of labels in the result.
func (r Result) Len() int {
	return len(r.labels)
}

// Map returns a copy of the label to value mapping.
func (r Result) Map() map[string]int64 {
	out := make(map[string]int64, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the result as an object whose keys follow catalog order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range r.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(r.values[label], 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseFinancialData scans text line by line and resolves every category in
// the catalog to a value. The first line matching a category decides its
// value; no match, or a figure that does not parse, yields zero.
func (c *Catalog) ParseFinancialData(text string) Result {
	lines := splitLines(text)
	result := Result{
		labels: c.Labels(),
		values: make(map[string]int64, len(c.categories)),
	}

	for i, cat := range c.categories {
		re := c.patterns[i]
		var value int64
		for _, line := range lines {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value = parseFigure(m[1])
			break
		}
		result.values[cat.Label] = value
	}

	return result
}

// ParseFinancialData runs the default catalog over text.
func ParseFinancialData(text string) Result {
	return defaultCatalog.ParseFinancialData(text)
}

// parseFigure strips thousands separators and parses the remaining digits.
// Anything unparseable, including int64 overflow, is treated as zero.
func parseFigure(s string) int64 {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// splitLines splits on the universal newline set: \n, \r\n, \r, vertical tab,
// form feed, file/group/record separators, NEL, and the Unicode line and
// paragraph separators. Empty lines are dropped since they cannot match.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
