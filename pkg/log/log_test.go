package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefault(t *testing.T) {
	c := Config{}
	c.Default()

	assert.Equal(t, "info", c.Level)
	assert.Equal(t, FormatAuto, c.Format)
	assert.NoError(t, c.Validate())
}

func TestConfigValidate(t *testing.T) {
	c := Config{Level: "loud", Format: FormatJSON}
	assert.Error(t, c.Validate())

	c = Config{Level: "debug", Format: "xml"}
	assert.Error(t, c.Validate())
}

func TestCreateWithWriterFiltersLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := CreateWithWriter(Config{Level: "warn", Format: FormatJSON}, buf)
	require.NoError(t, err)

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Int("x", 3).Msg("shown")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "shown", line["message"])
	assert.EqualValues(t, 3, line["x"])
}

func TestCreateWithWriterBadLevel(t *testing.T) {
	_, err := CreateWithWriter(Config{Level: "nope"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestStd(t *testing.T) {
	buf := &bytes.Buffer{}
	l, err := CreateWithWriter(Config{Level: "debug", Format: FormatJSON}, buf)
	require.NoError(t, err)

	Std(l).Println("bridged")
	assert.Contains(t, buf.String(), "bridged")
}
