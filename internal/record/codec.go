package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Marshal encodes a record as JSON. Object keys are written in UTF-16
// code unit order and <, >, & are not HTML-escaped, so equal records
// always produce identical bytes.
func Marshal(r Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeObject(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		return writeString(buf, val)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int8:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int16:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(val, 10))
	case float32:
		return writeFloat(buf, float64(val))
	case float64:
		return writeFloat(buf, val)
	case json.Number:
		if _, err := val.Float64(); err != nil {
			return fmt.Errorf("invalid number %q", val)
		}
		buf.WriteString(val.String())
	case Record:
		return writeObject(buf, val)
	case map[string]any:
		return writeObject(buf, Record(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	default:
		// Structs, typed slices and friends go through encoding/json.
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("unsupported value %T: %w", v, err)
		}
		buf.Write(data)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, r Record) error {
	buf.WriteByte('{')
	for i, k := range r.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := writeValue(buf, r[k]); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid UTF-8 in string %q", s)
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder appends a newline.
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number %v", f)
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// Unmarshal decodes JSON produced by Marshal (or any JSON object) into a
// Record. Integral numbers become int64 and all others float64; nested
// objects become map[string]any.
func Unmarshal(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("unmarshal record: not an object")
	}

	out := make(Record, len(raw))
	for k, v := range raw {
		val, err := fromDecoded(v)
		if err != nil {
			return nil, fmt.Errorf("unmarshal record: field %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// fromDecoded replaces json.Number with int64 or float64, recursively.
func fromDecoded(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		return numberValue(val)
	case map[string]any:
		for k, elem := range val {
			conv, err := fromDecoded(elem)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			val[k] = conv
		}
		return val, nil
	case []any:
		for i, elem := range val {
			conv, err := fromDecoded(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			val[i] = conv
		}
		return val, nil
	default:
		return v, nil
	}
}

func numberValue(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return f, nil
}
