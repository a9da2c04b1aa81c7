package telemetry

import (
	"context"
	"io/ioutil"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/telemetry/registry"
)

func TestConfig(t *testing.T) {
	c := Config{}
	c.Default()

	assert.Equal(t, "127.0.0.1:4280", c.Addr)
	assert.Equal(t, "/", c.Path)
	require.NotNil(t, c.Timeout)
	assert.NoError(t, c.Validate())

	c.Enable = true
	c.Path = ""
	assert.Error(t, c.Validate())
}

func TestServerExposesMetrics(t *testing.T) {
	lr, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	c := Config{Enable: true, Path: "/metrics"}
	c.Default()
	c.Timeout.Default()

	s, err := New(c, log.Nop(), registry.New(), lr)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe() }()

	res, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	buf, err := ioutil.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(buf), "go_goroutines")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-errc)
}
