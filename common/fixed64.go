package common

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

const (
	// supported max amount precision is 8
	MaximumPrecision = 8
	StorageFactor    = 100000000
)

// the 64 bit fixed-point number, precise 10^-8
type Fixed64 int64

func (f Fixed64) GetData() int64 {
	return int64(f)
}

func (f Fixed64) String() string {
	var buffer bytes.Buffer
	value := uint64(f)
	if f < 0 {
		buffer.WriteRune('-')
		value = uint64(-f)
	}
	buffer.WriteString(strconv.FormatUint(value/StorageFactor, 10))
	value %= StorageFactor
	if value > 0 {
		buffer.WriteRune('.')
		s := strconv.FormatUint(value, 10)
		for i := len(s); i < 8; i++ {
			buffer.WriteRune('0')
		}
		buffer.WriteString(s)
	}
	return buffer.String()
}

// Div splits an amount into n equal shares, rounding toward zero.
// Used for multi-party escrow splits.
func (f Fixed64) Div(n int64) Fixed64 {
	return Fixed64(int64(f) / n)
}

func StringToFixed64(s string) (Fixed64, error) {
	var buffer bytes.Buffer

	di := strings.Index(s, ".")
	if di == -1 {
		buffer.WriteString(s)
		for i := 0; i < MaximumPrecision; i++ {
			buffer.WriteByte('0')
		}
	} else {
		precision := len(s) - di - 1
		if precision > MaximumPrecision {
			return Fixed64(0), errors.New("unsupported precision")
		}
		buffer.WriteString(s[:di])
		buffer.WriteString(s[di+1:])
		n := MaximumPrecision - precision
		for i := 0; i < n; i++ {
			buffer.WriteByte('0')
		}
	}
	r, err := strconv.ParseInt(buffer.String(), 10, 64)
	if err != nil {
		return Fixed64(0), err
	}

	return Fixed64(r), nil
}

// MarshalJSON renders the amount as a bare JSON number in decimal form, so
// stored values match the canonical serialization byte-for-byte.
func (f Fixed64) MarshalJSON() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Fixed64) UnmarshalJSON(data []byte) error {
	v, err := StringToFixed64(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
