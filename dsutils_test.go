package dsutils

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zpiroux/dsutils/entity"
	"github.com/zpiroux/dsutils/entity/preprocess"
	"github.com/zpiroux/dsutils/entity/transform"
	"github.com/zpiroux/dsutils/pkg/persist"
)

const testSpecDir = "test/specs/"

func readSpec(t *testing.T, name string) []byte {
	t.Helper()
	specData, err := os.ReadFile(testSpecDir + name)
	require.NoError(t, err)
	return specData
}

func day(d int, h int) time.Time {
	return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)
}

func ordersFrame() *entity.Frame {
	return entity.MustNewFrame(
		entity.NewTimeColumn("created", []time.Time{day(1, 8), day(2, 8), day(6, 8), day(7, 8)}),
		entity.NewTimeColumn("delivered", []time.Time{day(4, 8), day(3, 20), day(11, 9), day(9, 8)}),
		entity.NewFloatColumn("price", []float64{100, 50, 80, 30}),
		entity.NewIntColumn("qty", []int64{2, 1, 4, 3}),
		entity.NewStringColumn("country", []string{"SE", "NO", "SE", "SE"}),
		entity.NewStringColumn("channel", []string{"web", "web", "web", "web"}),
	)
}

func TestPipelineFromSpec(t *testing.T) {
	config := NewConfig()
	p, err := NewPipeline(config, readSpec(t, "orders.json"))
	require.NoError(t, err)
	assert.Equal(t, "orders-v1", p.Id())
	assert.Equal(t, "weekday", p.Spec().Steps[0].Name)
	assert.Equal(t, "1-daysFromLaterToEarly", p.Spec().Steps[1].Name)

	out, fitted, err := p.FitTransform(ordersFrame(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"created_DayOfTheWeek",
		"deliveryDays",
		"priceToqtyRatio",
		"price_RatioTo_median",
		"country_NO",
		"country_SE",
	}, out.Names())

	days, _ := out.Column("created_DayOfTheWeek")
	assert.Equal(t, []int64{0, 1, 5, 6}, days.Ints)
	delivery, _ := out.Column("deliveryDays")
	assert.Equal(t, []int64{3, 1, 5, 2}, delivery.Ints)

	// Same result as running the steps by hand
	want := ordersFrame()
	for _, e := range []entity.Estimator{
		transform.DayOfTheWeek{Col: "created"},
		transform.DaysFromLaterToEarly{Start: "created", End: "delivered", FeatName: "deliveryDays"},
		transform.RatioBetweenColumns{Numer: "price", Denom: "qty"},
		transform.RatioColumnToValue{Col: "price", Func: transform.FuncMedian},
		preprocess.OneHotEncoder{Cols: []string{"country"}},
		preprocess.RemoveConstantColumns{},
		preprocess.StandardizeFloatCols{Cols: []string{"priceToqtyRatio", "price_RatioTo_median"}},
		transform.SelectColumns{Cols: out.Names()},
	} {
		want, _, err = entity.FitTransform(e, want, nil)
		require.NoError(t, err)
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("pipeline output mismatch (-want +got):\n%s", diff)
	}

	again, err := fitted.Transform(ordersFrame())
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, "orders-v1", fitted.Id())

	_, err = p.Transform(ordersFrame())
	assert.ErrorIs(t, err, entity.ErrNotFitted)
}

func TestPipelineNotifications(t *testing.T) {
	config := NewConfig()
	config.Metrics.Enabled = true
	config.Metrics.Registerer = prometheus.NewRegistry()

	p, err := NewPipeline(config, readSpec(t, "orders.json"))
	require.NoError(t, err)
	_, err = p.Fit(ordersFrame(), nil)
	require.NoError(t, err)

	ch := config.NotifyChannel()
	require.NotZero(t, len(ch))
	event := <-ch
	assert.Equal(t, "orders-v1", event.Pipeline)
	assert.Equal(t, "pipeline", event.Sender)
}

func TestInvalidPipelineSpecs(t *testing.T) {
	config := NewConfig()

	_, err := NewPipeline(config, readSpec(t, "invalid-unknown-type.json"))
	assert.ErrorIs(t, err, ErrUnknownTransformerType)

	_, err = NewPipeline(config, []byte(`{"name": "x", "version": 1}`))
	assert.ErrorIs(t, err, ErrInvalidPipelineSpec)

	_, err = ValidatePipelineSpec(config, []byte(`{"name": "x", "version": 1, "steps": [{"type": "ratioColumnToConst", "config": {"col": "a", "const": 0}}]}`))
	assert.ErrorIs(t, err, ErrInvalidPipelineSpec)
	assert.ErrorIs(t, err, entity.ErrZeroDivisor)

	id, err := ValidatePipelineSpec(config, readSpec(t, "orders.json"))
	assert.NoError(t, err)
	assert.Equal(t, "orders-v1", id)

	_, err = NewPipeline(&Config{}, readSpec(t, "orders.json"))
	assert.ErrorIs(t, err, ErrConfigNotInitialized)

	var fitted *FittedPipeline
	_, err = fitted.Transform(ordersFrame())
	assert.ErrorIs(t, err, entity.ErrNotFitted)
}

func TestPersistFrame(t *testing.T) {
	config := NewConfig()
	config.Persist.Dir = t.TempDir()

	base, err := PersistFrame(config, ordersFrame(), "SELECT * FROM orders")
	require.NoError(t, err)

	loaded, err := persist.Load(base)
	require.NoError(t, err)
	assert.Equal(t, ordersFrame().Names(), loaded.Names())

	_, err = PersistFrame(&Config{}, ordersFrame(), "")
	assert.ErrorIs(t, err, ErrConfigNotInitialized)
}
