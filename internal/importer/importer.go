package importer

import (
	"regexp"
	"strings"
)

const (
	ColumnName  = "Name"
	ColumnEAN   = "EAN"
	ColumnQty   = "Qty"
	ColumnStaff = "Display Name"
	ColumnRole  = "Role"
	ColumnStore = "Store"
)

// Result summarises an import. Rows are processed independently so one bad
// row never blocks the rest.
type Result struct {
	Success        int      `json:"success"`
	Failed         int      `json:"failed"`
	FailedMessages []string `json:"failed_messages"`
}

func newResult() *Result {
	return &Result{FailedMessages: []string{}}
}

func (r *Result) fail(msg string) {
	r.Failed++
	r.FailedMessages = append(r.FailedMessages, msg)
}

var (
	sizePattern    = regexp.MustCompile(`\(([^)]+)\)`)
	sizeStripRegex = regexp.MustCompile(`\s*\([^)]*\)`)
)

// ParseNameAndSize splits "Polo Shirt (M)" into "Polo Shirt" and "M".
func ParseNameAndSize(full string) (string, *string) {
	var size *string
	if m := sizePattern.FindStringSubmatch(full); m != nil {
		s := strings.TrimSpace(m[1])
		size = &s
	}

	name := full
	if loc := sizeStripRegex.FindStringIndex(full); loc != nil {
		name = full[:loc[0]] + full[loc[1]:]
	}
	return strings.TrimSpace(name), size
}

// row gives header-keyed access to a CSV record.
type row struct {
	index  map[string]int
	values []string
}

func (r row) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
