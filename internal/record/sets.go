package record

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// IDSet is an ordered set of browser ids, stored as a JSON array.
type IDSet []int64

// Has reports whether id is part of the set.
func (s IDSet) Has(id int64) bool {
	return slices.Contains(s, id)
}

// Add returns the set with id appended, and whether it was novel.
func (s IDSet) Add(id int64) (IDSet, bool) {
	if s.Has(id) {
		return s, false
	}

	return append(s, id), true
}

// Remove returns the set without id, and whether it was present.
func (s IDSet) Remove(id int64) (IDSet, bool) {
	i := slices.Index(s, id)
	if i < 0 {
		return s, false
	}

	return slices.Delete(s, i, i+1), true
}

// Value implements driver.Valuer.
func (s IDSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]int64(s))
	if err != nil {
		return nil, fmt.Errorf("id set: %w", err)
	}

	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *IDSet) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}

	var ids []int64
	if len(b) > 0 {
		if err := json.Unmarshal(b, &ids); err != nil {
			return fmt.Errorf("id set: %w", err)
		}
	}

	*s = ids

	return nil
}

// OpenTimes maps a tab id to the time it was opened.
type OpenTimes map[int64]int64

// Value implements driver.Valuer.
func (o OpenTimes) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}

	b, err := json.Marshal(map[int64]int64(o))
	if err != nil {
		return nil, fmt.Errorf("open times: %w", err)
	}

	return string(b), nil
}

// Scan implements sql.Scanner.
func (o *OpenTimes) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}

	m := OpenTimes{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &m); err != nil {
			return fmt.Errorf("open times: %w", err)
		}
	}

	*o = m

	return nil
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}
