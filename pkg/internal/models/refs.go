package models

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Ref is a record identifier accepted from clients as a number, a numeric
// string, or an object carrying an "id" field. Anything else is rejected.
type Ref uint

func (v *Ref) UnmarshalJSON(data []byte) error {
	var raw any
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid identifier: %v", err)
	}
	id, err := ParseRef(raw)
	if err != nil {
		return err
	}
	*v = Ref(id)
	return nil
}

func (v Ref) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(v), 10)), nil
}

func (v Ref) Uint() uint {
	return uint(v)
}

// ParseRef normalizes every identifier shape the API accepts into one uint.
func ParseRef(raw any) (uint, error) {
	switch val := raw.(type) {
	case float64:
		if val <= 0 || val != float64(uint64(val)) {
			return 0, fmt.Errorf("invalid identifier %v, must be a positive integer", val)
		}
		return uint(val), nil
	case int:
		if val <= 0 {
			return 0, fmt.Errorf("invalid identifier %d, must be a positive integer", val)
		}
		return uint(val), nil
	case uint:
		if val == 0 {
			return 0, fmt.Errorf("invalid identifier 0")
		}
		return val, nil
	case string:
		num, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
		if err != nil || num == 0 {
			return 0, fmt.Errorf("invalid identifier %q, must be a positive integer", val)
		}
		return uint(num), nil
	case map[string]any:
		if inner, ok := val["id"]; ok {
			if _, nested := inner.(map[string]any); nested {
				return 0, fmt.Errorf("invalid identifier, nested objects are not accepted")
			}
			return ParseRef(inner)
		}
		return 0, fmt.Errorf("invalid identifier, object must carry an id field")
	default:
		return 0, fmt.Errorf("invalid identifier of type %T", raw)
	}
}

func RefsToUint(in []Ref) []uint {
	out := make([]uint, len(in))
	for idx, item := range in {
		out[idx] = uint(item)
	}
	return out
}
