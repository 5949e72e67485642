package types

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// FormatRecordTable renders the records as a markdown table.
func FormatRecordTable(records []EmployeeRecord) string {
	if len(records) == 0 {
		return ""
	}
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Name", "Phone", "Designation", "Salary")
	for _, rec := range records {
		_ = table.Append(rec.Name, rec.Phone, rec.Designation, FormatSalary(rec.Salary))
	}
	_ = table.Render()
	return strings.TrimRight(buf.String(), "\n")
}

// FormatSalary prints a salary without a trailing ".00" for whole amounts.
func FormatSalary(salary float64) string {
	if salary == float64(int64(salary)) {
		return strconv.FormatInt(int64(salary), 10)
	}
	return strconv.FormatFloat(salary, 'f', 2, 64)
}
