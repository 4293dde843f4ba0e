package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// jsonValue marshals v for storage in a JSON column. Empty values are stored
// as SQL NULL so legacy rows and fresh rows look the same.
func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported column type %T for JSON scan", value)
	}
}

// YearSet is the canonical representation of product year eligibility.
// Empty means unrestricted ("all years"). Stored as a JSON array.
type YearSet []int

func (y YearSet) Value() (driver.Value, error) {
	if y == nil {
		y = YearSet{}
	}
	return jsonValue([]int(y))
}

func (y *YearSet) Scan(value interface{}) error { return jsonScan(y, value) }

// Normalize drops out-of-range entries, removes duplicates and sorts.
// Valid years are 1..10; 0 is the legacy "all years" marker and maps to an
// empty set.
func (y YearSet) Normalize() YearSet {
	seen := make(map[int]bool, len(y))
	out := make(YearSet, 0, len(y))
	for _, v := range y {
		if v < 1 || v > 10 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// LegacyYear derives the scalar view consumed by older records: 0 for an
// unrestricted set, otherwise the smallest element.
func (y YearSet) LegacyYear() int {
	if len(y) == 0 {
		return 0
	}
	return y[0]
}

// Contains reports membership; an empty set matches every year.
func (y YearSet) Contains(year int) bool {
	if len(y) == 0 {
		return true
	}
	for _, v := range y {
		if v == year {
			return true
		}
	}
	return false
}

// ItemFlags is the student's "has received this item" map keyed by the
// derived product key. Stored as a JSON object.
type ItemFlags map[string]bool

func (f ItemFlags) Value() (driver.Value, error) {
	if f == nil {
		f = ItemFlags{}
	}
	return jsonValue(map[string]bool(f))
}

func (f *ItemFlags) Scan(value interface{}) error { return jsonScan(f, value) }

// SetComponentSnapshot records one component of a set expansion as it was
// applied at transaction time. Quantity is per unit of the set, so the stock
// effect of the item is quantity × item quantity regardless of later edits to
// the set definition.
type SetComponentSnapshot struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
}

type SetComponentSnapshots []SetComponentSnapshot

func (s SetComponentSnapshots) Value() (driver.Value, error) {
	if s == nil {
		s = SetComponentSnapshots{}
	}
	return jsonValue([]SetComponentSnapshot(s))
}

func (s *SetComponentSnapshots) Scan(value interface{}) error { return jsonScan(s, value) }

// StudentInfo is the denormalized student snapshot embedded in a transaction.
type StudentInfo struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	StudentID string    `json:"student_id"`
	Course    string    `json:"course"`
	Year      int       `json:"year"`
	Branch    string    `json:"branch"`
}

func (s StudentInfo) Value() (driver.Value, error)  { return jsonValue(s) }
func (s *StudentInfo) Scan(value interface{}) error { return jsonScan(s, value) }

// BranchInfo is the denormalized branch snapshot embedded in a
// branch-transfer transaction.
type BranchInfo struct {
	BranchID uuid.UUID `json:"branch_id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
}

func (b BranchInfo) Value() (driver.Value, error)  { return jsonValue(b) }
func (b *BranchInfo) Scan(value interface{}) error { return jsonScan(b, value) }
