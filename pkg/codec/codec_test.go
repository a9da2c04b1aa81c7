package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, err := ByName("msgpack")
	require.NoError(t, err)
	assert.Equal(t, MIMEApplicationMsgpack, c.MIME)

	_, err = ByName("xml")
	assert.Error(t, err)
}

func TestByMIME(t *testing.T) {
	for contentType, expected := range map[string]string{
		"application/json":                MIMEApplicationJSON,
		"application/json; charset=UTF-8": MIMEApplicationJSON,
		"application/msgpack":             MIMEApplicationMsgpack,
		"application/x-msgpack":           MIMEApplicationMsgpack,
	} {
		c, ok := ByMIME(contentType)
		require.True(t, ok, contentType)
		assert.Equal(t, expected, c.MIME, contentType)
	}

	for _, contentType := range []string{"", "text/plain", ";;"} {
		_, ok := ByMIME(contentType)
		assert.False(t, ok, contentType)
	}
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, JSON.Name, Negotiate("").Name)
	assert.Equal(t, JSON.Name, Negotiate("*/*").Name)
	assert.Equal(t, Msgpack.Name, Negotiate("text/html, application/msgpack;q=0.9").Name)
	assert.Equal(t, JSON.Name, Negotiate("application/json, application/msgpack").Name)
	assert.Equal(t, JSON.Name, Negotiate("application/msgpack;q=0, application/json").Name)
	assert.Equal(t, JSON.Name, Negotiate("application/msgpack; q=0.0").Name)
	assert.Equal(t, Msgpack.Name, Negotiate("application/json;q=0, application/msgpack;q=0.5").Name)
}

func TestRoundTrip(t *testing.T) {
	type record struct {
		Name  string   `json:"name" msgpack:"name"`
		Codes []uint32 `json:"codes" msgpack:"codes"`
	}
	in := record{Name: "x", Codes: []uint32{1, 2, 3}}

	for _, c := range Codecs {
		buf, err := c.Marshal(in)
		require.NoError(t, err, c.Name)

		var out record
		require.NoError(t, c.Unmarshal(buf, &out), c.Name)
		assert.Equal(t, in, out, c.Name)
	}
}
