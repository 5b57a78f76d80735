package store

import (
	"fmt"
	"strings"
)

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{argIndex: 1}
}

// AddExpr appends a condition whose single %s is replaced by the next
// placeholder.
func (wb *whereBuilder) AddExpr(format string, value any) {
	wb.conditions = append(wb.conditions, fmt.Sprintf(format, fmt.Sprintf("$%d", wb.argIndex)))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddRaw appends a condition that takes no arguments.
func (wb *whereBuilder) AddRaw(condition string) {
	wb.conditions = append(wb.conditions, condition)
}

// Next returns the next free placeholder number.
func (wb *whereBuilder) Next() int {
	return wb.argIndex
}

// Build returns the WHERE clause, with a leading space, and its arguments.
// Both are empty when no condition was added.
func (wb *whereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}
