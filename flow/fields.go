package flow

import (
	"fmt"
	"strings"

	"github.com/hrtools/onboardbot/types"
	"github.com/hrtools/onboardbot/validate"
)

// FieldOrder is the fixed manual-collection order.
var FieldOrder = []string{"name", "phone", "designation", "salary"}

func fieldIndex(name string) int {
	for i, f := range FieldOrder {
		if f == name {
			return i
		}
	}
	return -1
}

// nextField returns the field after cur, or false when cur is the last one.
func nextField(cur string) (string, bool) {
	i := fieldIndex(cur)
	if i < 0 || i+1 >= len(FieldOrder) {
		return "", false
	}
	return FieldOrder[i+1], true
}

func promptFor(field string) string {
	if field == FieldOrder[0] {
		return "Let's add an employee manually. What is the employee's full name?"
	}
	return fmt.Sprintf("Great. Now, what is their %s?", strings.ReplaceAll(field, "_", " "))
}

// recordFromDraft converts the raw answers into a record. The salary is
// parsed leniently; an unparseable salary becomes 0 and is flagged by the
// validator at review/persist.
func recordFromDraft(draft map[string]string) types.EmployeeRecord {
	salary, _ := validate.Salary(draft["salary"])
	return types.EmployeeRecord{
		Name:        draft["name"],
		Phone:       draft["phone"],
		Designation: draft["designation"],
		Salary:      salary,
	}
}
