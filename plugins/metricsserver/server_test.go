package metricsserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/svchost/pkg/lifecycle"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestService_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_scrapes_total",
		Help: "Test counter.",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	svc := New(Config{Addr: "127.0.0.1:0"}, reg, nil)
	engine := lifecycle.New(svc)
	require.Equal(t, lifecycle.SetupSuccessful, engine.StartAndWait(context.Background()))
	defer engine.StopAndWait()

	base := "http://" + svc.Addr()

	code, body := get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "test_scrapes_total 3")

	code, body = get(t, base+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestService_StopReleasesListener(t *testing.T) {
	svc := New(Config{Addr: "127.0.0.1:0"}, prometheus.NewRegistry(), nil)
	engine := lifecycle.New(svc)
	require.Equal(t, lifecycle.SetupSuccessful, engine.StartAndWait(context.Background()))

	addr := svc.Addr()
	engine.StopAndWait()

	assert.Equal(t, lifecycle.StateStopped, engine.State())
	assert.NoError(t, engine.Err())

	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	ln.Close()
}

func TestService_AddressInUseFailsSetup(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	engine := lifecycle.New(New(Config{Addr: ln.Addr().String()}, nil, nil))

	assert.Equal(t, lifecycle.SetupUnsuccessful, engine.StartAndWait(context.Background()))
	assert.Equal(t, lifecycle.StateFaulted, engine.State())
	assert.Error(t, engine.Err())
}

func TestService_TeardownWithoutSetup(t *testing.T) {
	svc := New(Config{}, nil, nil)
	assert.NoError(t, svc.Teardown(context.Background()))
	assert.Empty(t, svc.Addr())
}
