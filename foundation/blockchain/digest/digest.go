// Package digest provides the canonical encoding and hashing used to link
// blocks together. The encoding matches a JSON document with sorted keys and
// the ", " / ": " separators so nodes written in other languages produce the
// same bytes for the same block.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ZeroHash represents a hash code of zeros. It is returned by Hash when the
// value can't be encoded.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// Field represents a single key/value pair of a canonical record.
type Field struct {
	Key   string
	Value any
}

// Canonical is implemented by any record that can be hashed. The order of
// the returned fields does not matter, they are sorted by key on encoding.
type Canonical interface {
	CanonicalFields() []Field
}

// Literal is a JSON number written exactly as it reads, so a value received
// as 5.0 is hashed as 5.0 and a value received as 5 is hashed as 5.
type Literal string

// FormatNumber returns the literal for a value: without a fractional part
// when the value is integral and as a float otherwise.
func FormatNumber(f float64) Literal {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return Literal(strconv.FormatInt(int64(f), 10))
	}

	return Literal(formatFloat(f))
}

// Valid reports whether the literal is a JSON number.
func (l Literal) Valid() bool {
	if l == "" || l[0] == '"' {
		return false
	}

	var n json.Number
	return json.Unmarshal([]byte(l), &n) == nil
}

// =============================================================================

// Sum returns the lowercase hex encoded SHA-256 of the data.
func Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Hash returns the unique hash for the record.
func Hash(value Canonical) string {
	data, err := Marshal(value)
	if err != nil {
		return ZeroHash
	}

	return Sum(data)
}

// Marshal returns the canonical encoding of the record.
func Marshal(value Canonical) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeRecord(&buf, value); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// =============================================================================

func writeRecord(buf *bytes.Buffer, value Canonical) error {
	fields := value.CanonicalFields()
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})

	buf.WriteByte('{')
	for i, field := range fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeString(buf, field.Key)
		buf.WriteString(": ")

		if err := writeValue(buf, field.Value); err != nil {
			return fmt.Errorf("field %q: %w", field.Key, err)
		}
	}
	buf.WriteByte('}')

	return nil
}

func writeValue(buf *bytes.Buffer, value any) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		writeString(buf, v)
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case int:
		buf.WriteString(strconv.Itoa(v))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(v, 10))
	case float64:
		buf.WriteString(formatFloat(v))
	case Literal:
		if !v.Valid() {
			return fmt.Errorf("invalid number literal %q", string(v))
		}
		buf.WriteString(string(v))
	case Canonical:
		return writeRecord(buf, v)
	case []Canonical:
		buf.WriteByte('[')
		for i, rec := range v {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeRecord(buf, rec); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported type %T", value)
	}

	return nil
}

// writeString writes a quoted string escaping everything outside of
// printable ASCII.
func writeString(buf *bytes.Buffer, s string) {
	const hexDigits = "0123456789abcdef"

	escape := func(r rune) {
		buf.WriteString(`\u`)
		buf.WriteByte(hexDigits[r>>12&0xf])
		buf.WriteByte(hexDigits[r>>8&0xf])
		buf.WriteByte(hexDigits[r>>4&0xf])
		buf.WriteByte(hexDigits[r&0xf])
	}

	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || r == 0x7f:
				escape(r)
			case r < utf8.RuneSelf:
				buf.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				escape(r1)
				escape(r2)
			default:
				escape(r)
			}
		}
	}
	buf.WriteByte('"')
}

// formatFloat writes the shortest representation that round trips. Values
// outside of [1e-4, 1e16) use exponent form and integral values keep a
// trailing ".0" so they are never mistaken for integers.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
