// Package patch applies RFC6902 edit operations to the collected record
// batch. Grid edits from the transport arrive as operations so every batch
// mutation flows through the core instead of poking state directly.
package patch

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/hrtools/onboardbot/types"
)

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// allowedPath accepts row-level edits ("/0", "/-") and field-level edits on
// the four record fields ("/0/name", "/2/salary").
var allowedPath = regexp.MustCompile(`^/(\d+|-)(/(name|phone|designation|salary))?$`)

// ValidateOperations rejects operations outside the edit surface before
// anything is applied.
func ValidateOperations(ops []Operation) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace, OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		if !allowedPath.MatchString(op.Path) {
			return fmt.Errorf("operation %d: path %q is not an editable batch path", i, op.Path)
		}
	}
	return nil
}

// ApplyToBatch applies the operations to the batch and returns the edited
// copy. A replace on a missing path downgrades to add; a remove on a
// missing path is dropped. The input slice is never modified.
func ApplyToBatch(batch []types.EmployeeRecord, ops []Operation) ([]types.EmployeeRecord, error) {
	if len(ops) == 0 {
		return batch, nil
	}
	if err := ValidateOperations(ops); err != nil {
		return nil, err
	}
	if batch == nil {
		batch = []types.EmployeeRecord{}
	}

	currentJSON, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	ops = fixOperations(currentJSON, ops)

	patchJSON, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("marshal operations: %w", err)
	}
	decoded, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	editedJSON, err := decoded.Apply(currentJSON)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}

	var edited []types.EmployeeRecord
	if err := json.Unmarshal(editedJSON, &edited); err != nil {
		return nil, fmt.Errorf("patch result is not a valid record batch: %w", err)
	}
	return edited, nil
}

// fixOperations reconciles operations with the current document so common
// editor output applies cleanly.
func fixOperations(currentJSON []byte, ops []Operation) []Operation {
	var doc any
	if err := json.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case OperationReplace:
			if !pathExists(doc, op.Path) {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if pathExists(doc, op.Path) {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}
	return fixed
}

func pathExists(doc any, path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	cur := doc
	for _, token := range strings.Split(path[1:], "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			value, ok := node[token]
			if !ok {
				return false
			}
			cur = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			cur = node[index]
		default:
			return false
		}
	}
	return true
}
