package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/supplyload-go/internal/application/common"
	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
)

func setupRegistry(t *testing.T) *LoadingMetricsCollector {
	t.Helper()

	InitRegistry()
	t.Cleanup(Reset)

	collector := NewLoadingMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalLoadingCollector(collector)
	return collector
}

// gathered returns the summed counter value of a metric family, or the sample
// count for histograms
func gathered(t *testing.T, name string) float64 {
	t.Helper()

	families, err := Registry.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				total += float64(h.GetSampleCount())
				continue
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRecordFunctions_AreNoOpsWithoutCollector(t *testing.T) {
	Reset()

	RecordLoadTick("Rover-1", loading.Stats{Budget: 10})
	RecordSessionEnd("Rover-1", "completed", true)

	assert.False(t, IsEnabled())
}

func TestLoadingMetrics_RecordLoadTick(t *testing.T) {
	// Arrange
	setupRegistry(t)

	// Act
	RecordLoadTick("Rover-1", loading.Stats{
		Budget:    20,
		Remaining: 5,
		Loaded: map[loading.Category]float64{
			loading.CategoryMandatoryResources: 12,
			loading.CategoryOptionalEquipment:  3,
		},
		Shortages: 2,
	})
	RecordLoadTick("Rover-1", loading.Stats{})

	// Assert
	assert.Equal(t, 15.0, gathered(t, "supplyload_loading_mass_loaded_kg_total"))
	assert.Equal(t, 2.0, gathered(t, "supplyload_loading_shortages_total"))
	assert.Equal(t, 1.0, gathered(t, "supplyload_loading_tick_budget_kg"))
}

func TestLoadingMetrics_RecordSessionEnd(t *testing.T) {
	setupRegistry(t)

	RecordSessionEnd("Rover-1", "completed", true)
	RecordSessionEnd("Rover-2", "failed", false)

	assert.Equal(t, 2.0, gathered(t, "supplyload_loading_sessions_total"))
	assert.Equal(t, 1.0, gathered(t, "supplyload_loading_hold_full_total"))
}

type probeCommand struct{}

func TestPrometheusMiddleware_RecordsCommands(t *testing.T) {
	// Arrange
	setupRegistry(t)
	commands := NewCommandMetricsCollector()
	require.NoError(t, commands.Register())

	m := common.NewMediator()
	m.Use(PrometheusMiddleware(commands))
	calls := 0
	require.NoError(t, common.RegisterHandler[*probeCommand](m, common.HandlerFunc(
		func(ctx context.Context, request common.Request) (common.Response, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("second call fails")
			}
			return "ok", nil
		},
	)))

	// Act
	_, err := m.Send(context.Background(), &probeCommand{})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), &probeCommand{})
	require.Error(t, err)

	// Assert
	assert.Equal(t, 2.0, gathered(t, "supplyload_mediator_commands_total"))
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "probeCommand", extractCommandName(&probeCommand{}))
	assert.Equal(t, "UnknownCommand", extractCommandName(nil))
}

func TestServer_ServesRegistry(t *testing.T) {
	// Arrange
	setupRegistry(t)
	RecordSessionEnd("Rover-1", "cancelled", false)

	server, err := NewServer("127.0.0.1:0", "/metrics")
	require.NoError(t, err)
	server.Start()
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	// Act
	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `supplyload_loading_sessions_total{outcome="cancelled"} 1`)
}
