package types

import (
	"fmt"
	"strconv"
)

// AnswerMap holds the in-progress answers of a preview session, keyed by
// question id. Matrix rows use the key "<questionID>_<rowIndex>".
// Values are either a scalar (string or number) or a []string for
// multi-select answers.
type AnswerMap map[string]interface{}

func MatrixRowKey(questionID string, rowIndex int) string {
	return fmt.Sprintf("%s_%d", questionID, rowIndex)
}

func (a AnswerMap) Has(key string) bool {
	_, ok := a[key]
	return ok
}

func (a AnswerMap) Clone() AnswerMap {
	c := make(AnswerMap, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// AsStrings normalizes an answer value to a string slice: arrays keep their
// elements, scalars become a single-element slice. Unanswered (nil) yields nil.
func AsStrings(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, valueToString(item))
		}
		return items
	default:
		return []string{valueToString(v)}
	}
}

// IsArray reports whether an answer value is a multi-select array.
func IsArray(value interface{}) bool {
	switch value.(type) {
	case []string, []interface{}:
		return true
	}
	return false
}

// AsNumber coerces an answer value to a float64 for numeric comparisons.
func AsNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		num, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return num, true
	}
	return 0, false
}

func valueToString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
