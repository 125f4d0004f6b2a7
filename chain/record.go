package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map"

	"github.com/midpay/midpay/crypto"
)

// field holding the hex-encoded signature inside a record
const SignatureField = "signature"

// Record is one signed ledger entry: an insertion-ordered field map plus a
// signature computed over the canonical serialization of every other field.
type Record struct {
	fields *orderedmap.OrderedMap
}

func NewRecord() *Record {
	return &Record{fields: orderedmap.New()}
}

func (r *Record) Set(key string, value interface{}) *Record {
	r.fields.Set(key, value)
	return r
}

func (r *Record) Get(key string) (interface{}, bool) {
	return r.fields.Get(key)
}

// GetString returns the field as a string, or "" if absent or not a string.
func (r *Record) GetString(key string) string {
	v, ok := r.fields.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (r *Record) Len() int {
	return r.fields.Len()
}

// SetSignature stores sig hex-encoded under the signature field.
func (r *Record) SetSignature(sig []byte) {
	r.fields.Set(SignatureField, hex.EncodeToString(sig))
}

// Signature returns the decoded signature bytes, if present and well-formed.
func (r *Record) Signature() ([]byte, bool) {
	v, ok := r.fields.Get(SignatureField)
	if !ok {
		return nil, false
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	sig, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return sig, true
}

// CanonicalFields implements crypto.Canonicalizer over all fields, signature
// included. Block hashing covers the signature; signing does not (see
// SigningBytes).
func (r *Record) CanonicalFields() map[string]interface{} {
	fields := make(map[string]interface{}, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		fields[pair.Key.(string)] = pair.Value
	}
	return fields
}

// SigningBytes is the canonical serialization of the record excluding the
// signature field itself. Signing and verification both use this form.
func (r *Record) SigningBytes() ([]byte, error) {
	fields := r.CanonicalFields()
	delete(fields, SignatureField)
	return crypto.CanonicalMarshal(fields)
}

// MarshalJSON emits fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(pair.Key.(string))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(pair.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reconstructs the record preserving the stored field order.
// Numbers are kept as json.Number so reloaded blocks re-hash byte-for-byte.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	r.fields = orderedmap.New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("non-string record key %v", keyTok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.fields.Set(key, value)
	}

	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
