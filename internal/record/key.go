package record

import (
	"encoding/json"
	"fmt"
	"math"
)

// NormalizeKey converts a key value into the representation the store
// binds and compares: int64 for integral numbers, float64 for other finite
// numbers, string for text. Anything else is not a valid key.
func NormalizeKey(v any) (any, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return uintKey(uint64(val))
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return uintKey(val)
	case float32:
		return floatKey(float64(val))
	case float64:
		return floatKey(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid numeric key %q", val)
		}
		return floatKey(f)
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return nil, fmt.Errorf("key is null")
	default:
		return nil, fmt.Errorf("unsupported key type %T", v)
	}
}

func uintKey(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("key %d overflows int64", u)
	}
	return int64(u), nil
}

func floatKey(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("key %v is not a finite number", f)
	}
	if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
		return int64(f), nil
	}
	return f, nil
}

// NumericKey reports whether k is a number and, if so, its integer part.
// Text keys and anything else report false.
func NumericKey(k any) (int64, bool) {
	switch val := k.(type) {
	case int64:
		return val, true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int64(math.Floor(val)), true
	default:
		return 0, false
	}
}
