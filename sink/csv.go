package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/hrtools/onboardbot/types"
)

var csvHeader = []string{"name", "phone", "designation", "salary"}

// CSV is an append-only file sink. The header is written once, when the
// file is first created.
type CSV struct {
	mu   sync.Mutex
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Save(_ context.Context, records []types.EmployeeRecord) Outcome {
	if len(records) == 0 {
		return Outcome{Message: "No data to save.", OK: true}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_, statErr := os.Stat(c.path)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Outcome{Message: fmt.Sprintf("Error saving to database: %v", err)}
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return Outcome{Message: fmt.Sprintf("Error saving to database: %v", err)}
		}
	}
	for _, rec := range records {
		row := []string{rec.Name, rec.Phone, rec.Designation, types.FormatSalary(rec.Salary)}
		if err := w.Write(row); err != nil {
			return Outcome{Message: fmt.Sprintf("Error saving to database: %v", err)}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Outcome{Message: fmt.Sprintf("Error saving to database: %v", err)}
	}
	return Outcome{Message: saveMessage(len(records), c.path), OK: true}
}

func (c *CSV) Load(_ context.Context) ([]types.EmployeeRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := os.Open(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open csv sink: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	var out []types.EmployeeRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv sink: %w", err)
		}
		if first {
			first = false
			if row[0] == csvHeader[0] {
				continue
			}
		}
		salary, _ := strconv.ParseFloat(row[3], 64)
		out = append(out, types.EmployeeRecord{
			Name:        row[0],
			Phone:       row[1],
			Designation: row[2],
			Salary:      salary,
		})
	}
	return out, nil
}
