package codec

import (
	"encoding/json"
	"mime"
	"strconv"
	"strings"

	msgpack "github.com/vmihailenco/msgpack/v5"

	"git.backbone/corpix/greeter/pkg/errors"
)

const (
	MIMEApplicationJSON    = "application/json"
	MIMEApplicationMsgpack = "application/msgpack"
)

type (
	Marshaler   = func(v interface{}) ([]byte, error)
	Unmarshaler = func(buf []byte, v interface{}) error

	Codec struct {
		Name        string
		MIME        string
		ContentType string
		Marshal     Marshaler
		Unmarshal   Unmarshaler
	}
)

var (
	JSON = Codec{
		Name:        "json",
		MIME:        MIMEApplicationJSON,
		ContentType: MIMEApplicationJSON + "; charset=UTF-8",
		Marshal:     json.Marshal,
		Unmarshal:   json.Unmarshal,
	}
	Msgpack = Codec{
		Name:        "msgpack",
		MIME:        MIMEApplicationMsgpack,
		ContentType: MIMEApplicationMsgpack,
		Marshal:     msgpack.Marshal,
		Unmarshal:   msgpack.Unmarshal,
	}

	Default = JSON
	Codecs  = []Codec{JSON, Msgpack}

	// x-msgpack is still what most clients send
	aliases = map[string]string{
		"application/x-msgpack": MIMEApplicationMsgpack,
	}
)

func ByName(name string) (Codec, error) {
	for _, c := range Codecs {
		if c.Name == name {
			return c, nil
		}
	}

	available := make([]string, len(Codecs))
	for k, c := range Codecs {
		available[k] = c.Name
	}

	return Codec{}, errors.Errorf(
		"unexpected encoding %q, expected one of: %q",
		name, available,
	)
}

// ByMIME resolves a Content-Type header value, parameters are ignored.
func ByMIME(contentType string) (Codec, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Codec{}, false
	}
	if alias, ok := aliases[mediaType]; ok {
		mediaType = alias
	}

	for _, c := range Codecs {
		if c.MIME == mediaType {
			return c, true
		}
	}

	return Codec{}, false
}

// Negotiate picks the first supported codec listed in the Accept header,
// falling back to Default. Media types with q=0 are refused, other
// quality values are not weighed.
func Negotiate(accept string) Codec {
	for _, part := range strings.Split(accept, ",") {
		part = strings.TrimSpace(part)
		if part == "" || refused(part) {
			continue
		}
		if c, ok := ByMIME(part); ok {
			return c
		}
	}

	return Default
}

func refused(mediaRange string) bool {
	_, params, err := mime.ParseMediaType(mediaRange)
	if err != nil {
		return false
	}
	q, ok := params["q"]
	if !ok {
		return false
	}
	weight, err := strconv.ParseFloat(q, 64)
	return err == nil && weight == 0
}
