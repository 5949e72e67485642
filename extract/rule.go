package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/hrtools/onboardbot/types"
	"github.com/hrtools/onboardbot/validate"
)

// fieldAliases maps header spellings seen in uploads to record fields.
var fieldAliases = map[string]string{
	"name":        "name",
	"full name":   "name",
	"employee":    "name",
	"phone":       "phone",
	"mobile":      "phone",
	"contact":     "phone",
	"designation": "designation",
	"title":       "designation",
	"role":        "designation",
	"salary":      "salary",
	"pay":         "salary",
	"ctc":         "salary",
}

// RuleBased parses "key: value, key: value" row text without an LLM. It is
// the offline fallback behind the tool-based extractor and the only
// extractor when no model is configured.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (e *RuleBased) Extract(_ context.Context, text string) (types.EmployeeRecord, error) {
	var rec types.EmployeeRecord
	matched := false
	for _, pair := range strings.Split(text, ",") {
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		field, ok := fieldAliases[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch field {
		case "name":
			rec.Name = value
		case "phone":
			rec.Phone = value
		case "designation":
			rec.Designation = value
		case "salary":
			if salary, ok := validate.Salary(value); ok {
				rec.Salary = salary
			}
		}
		matched = true
	}
	if !matched || rec.Name == "" {
		return types.EmployeeRecord{}, errors.New("no recognizable employee fields in row")
	}
	return rec, nil
}
