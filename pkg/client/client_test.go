package client

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/greeter"
	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/telemetry/registry"
)

func startGreeter(t *testing.T) string {
	t.Helper()

	c := greeter.Config{Addr: "127.0.0.1:0", Compress: true}
	c.Default()
	c.Timeout.Default()
	c.CORS.Default()
	c.Swagger.Default()

	lr, err := net.Listen("tcp", c.Addr)
	require.NoError(t, err)

	s, err := greeter.New(c, log.Nop(), registry.Bare(), lr)
	require.NoError(t, err)

	go func() { _ = s.ListenAndServe() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})

	return "http://" + s.Addr()
}

func newClient(t *testing.T, url string, configure ...func(*Config)) *Client {
	t.Helper()

	c := Config{URL: url}
	for _, fn := range configure {
		fn(&c)
	}
	c.Default()

	cl, err := New(c, log.Nop())
	require.NoError(t, err)
	return cl
}

func TestConfig(t *testing.T) {
	c := Config{}
	c.Default()
	assert.Equal(t, "http://127.0.0.1:8080", c.URL)
	assert.NoError(t, c.Validate())

	c.URL = "ftp://example.com"
	assert.Error(t, c.Validate())

	c.URL = "http://example.com"
	c.Encoding = "xml"
	assert.Error(t, c.Validate())
}

func TestClient(t *testing.T) {
	url := startGreeter(t)
	ctx := context.Background()

	variants := map[string]func(*Config){
		"json":         func(c *Config) {},
		"msgpack":      func(c *Config) { c.Encoding = "msgpack" },
		"json+zstd":    func(c *Config) { c.Compress = true },
		"msgpack+zstd": func(c *Config) { c.Encoding = "msgpack"; c.Compress = true },
	}

	for name, configure := range variants {
		t.Run(name, func(t *testing.T) {
			cl := newClient(t, url, configure)

			p, err := cl.Fetch(ctx)
			require.NoError(t, err)
			assert.Equal(t, greeter.Fixed(), p)

			text, err := cl.Echo(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, "foo bar", text)

			text, err = cl.Greet(ctx, "Bob")
			require.NoError(t, err)
			assert.Equal(t, "Hello Bob", text)

			text, err = cl.Echo(ctx, greeter.Payload{Label: "foo", Codes: []uint32{98, 0xD800}})
			require.Error(t, err)
			assert.Empty(t, text)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, http.StatusBadRequest, se.Code)
		})
	}
}

func TestGreetEscapesName(t *testing.T) {
	cl := newClient(t, startGreeter(t))

	text, err := cl.Greet(context.Background(), "Bob Smith")
	require.NoError(t, err)
	assert.Equal(t, "Hello Bob Smith", text)
}

func TestReflect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, err := ioutil.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"method": r.Method,
			"json":   json.RawMessage(buf),
		})
	}))
	defer srv.Close()

	cl := newClient(t, srv.URL, func(c *Config) { c.Encoding = "msgpack"; c.Compress = true })
	data := greeter.Payload{Label: "Foo", Codes: []uint32{2, 3, 4}}

	reflected, err := cl.Reflect(context.Background(), srv.URL+"/anything", data)
	require.NoError(t, err)
	assert.Equal(t, data, reflected)
}

func TestTransportError(t *testing.T) {
	lr, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lr.Addr().String()
	require.NoError(t, lr.Close())

	cl := newClient(t, "http://"+addr)
	_, err = cl.Fetch(context.Background())
	require.Error(t, err)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}
