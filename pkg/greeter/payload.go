package greeter

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	msgpack "github.com/vmihailenco/msgpack/v5"

	"git.backbone/corpix/greeter/pkg/errors"
)

type Payload struct {
	Label string   `json:"foo" msgpack:"foo"`
	Codes []uint32 `json:"bar" msgpack:"bar"`
}

// CodePointError reports the first code which is not a Unicode scalar value.
type CodePointError struct {
	Index int
	Value uint32
}

func (e *CodePointError) Error() string {
	return fmt.Sprintf(
		"code %d at index %d is not a valid unicode scalar value",
		e.Value, e.Index,
	)
}

var fixed = Payload{
	Label: "foo",
	Codes: []uint32{98, 97, 114},
}

// Fixed returns a copy of the payload served by GET /.
func Fixed() Payload {
	return fixed.Clone()
}

func (p Payload) Clone() Payload {
	codes := make([]uint32, len(p.Codes))
	copy(codes, p.Codes)

	return Payload{
		Label: p.Label,
		Codes: codes,
	}
}

// DecodeMsgpack reads codes at their full wire width, codes which do not
// fit into uint32 are rejected instead of truncated.
func (p *Payload) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}

	out := Payload{}
	for k := 0; k < n; k++ {
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}
		switch key {
		case "foo":
			out.Label, err = dec.DecodeString()
		case "bar":
			out.Codes, err = decodeMsgpackCodes(dec)
		default:
			err = dec.Skip()
		}
		if err != nil {
			return err
		}
	}

	*p = out
	return nil
}

func decodeMsgpackCodes(dec *msgpack.Decoder) ([]uint32, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil || n < 0 {
		return nil, err
	}

	codes := make([]uint32, n)
	for k := range codes {
		v, err := dec.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		switch code := v.(type) {
		case int64:
			if code < 0 || code > math.MaxUint32 {
				return nil, errors.Errorf("code %d at index %d is out of range", code, k)
			}
			codes[k] = uint32(code)
		case uint64:
			if code > math.MaxUint32 {
				return nil, errors.Errorf("code %d at index %d is out of range", code, k)
			}
			codes[k] = uint32(code)
		default:
			return nil, errors.Errorf("code at index %d is %T, expected an integer", k, v)
		}
	}

	return codes, nil
}

func ValidCode(code uint32) bool {
	return code <= utf8.MaxRune && utf8.ValidRune(rune(code))
}

// Decode converts Codes into text, failing on the first invalid code.
func (p Payload) Decode() (string, error) {
	b := strings.Builder{}
	b.Grow(len(p.Codes))

	for n, code := range p.Codes {
		if !ValidCode(code) {
			return "", &CodePointError{Index: n, Value: code}
		}
		b.WriteRune(rune(code))
	}

	return b.String(), nil
}

// Echo is the label followed by the decoded codes, separated by a space.
func (p Payload) Echo() (string, error) {
	decoded, err := p.Decode()
	if err != nil {
		return "", err
	}

	return p.Label + " " + decoded, nil
}

func Greeting(name string) string {
	return "Hello " + name
}
