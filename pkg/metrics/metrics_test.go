package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/svchost/pkg/lifecycle"
)

type hooks struct {
	setupErr    error
	teardownErr error
}

func (h hooks) Setup(ctx context.Context) error { return h.setupErr }
func (h hooks) Execute(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
func (h hooks) Teardown(ctx context.Context) error { return h.teardownErr }

func TestNewCollector_DefaultNamespace(t *testing.T) {
	c := NewCollector("")
	obs := c.Observer("db")
	obs.OnStateChange(lifecycle.StateCreated, lifecycle.StateSettingUp)

	families, err := c.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["svchost_service_state"])
	assert.True(t, names["svchost_service_transitions_total"])
}

func TestObserver_FullRun(t *testing.T) {
	c := NewCollector("test")
	e := lifecycle.New(hooks{}, lifecycle.WithObserver(c.Observer("api")))

	require.Equal(t, lifecycle.SetupSuccessful, e.StartAndWait(context.Background()))
	assert.Equal(t, float64(lifecycle.StateRunning), testutil.ToFloat64(c.state.WithLabelValues("api")))

	e.StopAndWait()

	assert.Equal(t, float64(lifecycle.StateStopped), testutil.ToFloat64(c.state.WithLabelValues("api")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("api", "Created", "SettingUp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("api", "TearingDown", "Stopped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stopRequests.WithLabelValues("api", "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.setupLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(c.teardownLatency))
}

func TestObserver_Failures(t *testing.T) {
	c := NewCollector("test")

	failing := lifecycle.New(hooks{setupErr: errors.New("x")}, lifecycle.WithObserver(c.Observer("a")))
	require.Equal(t, lifecycle.SetupUnsuccessful, failing.StartAndWait(context.Background()))
	<-failing.Done()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("a", "setup")))
	assert.Equal(t, float64(lifecycle.StateFaulted), testutil.ToFloat64(c.state.WithLabelValues("a")))

	sloppy := lifecycle.New(hooks{teardownErr: errors.New("y")}, lifecycle.WithObserver(c.Observer("b")))
	sloppy.StartAndWait(context.Background())
	sloppy.StopAndWait()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("b", "teardown")))
	assert.Equal(t, float64(lifecycle.StateStopped), testutil.ToFloat64(c.state.WithLabelValues("b")))
}

func TestObserver_StopBeforeStart(t *testing.T) {
	c := NewCollector("test")
	e := lifecycle.New(hooks{}, lifecycle.WithObserver(c.Observer("idle")))
	e.StopAndWait()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.stopRequests.WithLabelValues("idle", "false")))
	assert.Equal(t, 0, testutil.CollectAndCount(c.setupLatency))
}
