package crypto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/maps/treemap"
	orderedmap "github.com/wk8/go-ordered-map"

	"github.com/midpay/midpay/common"
)

// Canonicalizer is implemented by domain types that serialize as a canonical
// JSON object. Field order in the returned map is irrelevant; canonical form
// always sorts keys lexicographically.
type Canonicalizer interface {
	CanonicalFields() map[string]interface{}
}

// CanonicalMarshal serializes a value into its canonical JSON form: objects
// with lexicographically sorted keys, integers bare, floats in fixed
// (non-exponent) shortest form, amounts through Fixed64 decimal rendering.
// Signing and hashing both use this form, so two equal values always produce
// byte-identical input.
func CanonicalMarshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case Canonicalizer:
		return writeObject(buf, t.CanonicalFields())
	case *orderedmap.OrderedMap:
		fields := make(map[string]interface{}, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			key, ok := pair.Key.(string)
			if !ok {
				return fmt.Errorf("non-string record key %v", pair.Key)
			}
			fields[key] = pair.Value
		}
		return writeObject(buf, fields)
	case map[string]interface{}:
		return writeObject(buf, t)
	case []interface{}:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case string:
		s, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(s)
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case common.Fixed64:
		buf.WriteString(t.String())
	case int:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(t), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(t, 10))
	case float64:
		buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case json.Number:
		// keeps the stored literal byte-for-byte on reload
		buf.WriteString(t.String())
	default:
		return fmt.Errorf("unsupported canonical type %T", v)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, fields map[string]interface{}) error {
	sorted := treemap.NewWithStringComparator()
	for k, v := range fields {
		sorted.Put(k, v)
	}

	buf.WriteByte('{')
	first := true
	it := sorted.Iterator()
	for it.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(it.Key().(string))
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeCanonical(buf, it.Value()); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
