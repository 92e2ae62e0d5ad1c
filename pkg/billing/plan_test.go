package billing_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

func testPlans() []billing.Plan {
	return []billing.Plan{
		{
			ID:       "price_pro_monthly",
			Name:     "Pro Monthly",
			Price:    billing.Money{Amount: 49900, Currency: "INR"},
			Interval: billing.IntervalMonthly,
		},
		{
			ID:       "price_pro_yearly",
			Name:     "Pro Yearly",
			Price:    billing.Money{Amount: 499900, Currency: "INR"},
			Interval: billing.IntervalYearly,
		},
	}
}

func TestInterval(t *testing.T) {
	t.Parallel()

	t.Run("valid values", func(t *testing.T) {
		t.Parallel()

		assert.True(t, billing.IntervalMonthly.Valid())
		assert.True(t, billing.IntervalYearly.Valid())
		assert.False(t, billing.Interval("weekly").Valid())
		assert.False(t, billing.Interval("").Valid())
	})

	t.Run("next deadline", func(t *testing.T) {
		t.Parallel()

		from := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, from.AddDate(0, 1, 0), billing.IntervalMonthly.Next(from))
		assert.Equal(t, from.AddDate(1, 0, 0), billing.IntervalYearly.Next(from))
	})
}

func TestNewCatalog(t *testing.T) {
	t.Parallel()

	t.Run("preserves source order", func(t *testing.T) {
		t.Parallel()

		catalog, err := billing.NewCatalog(context.Background(), billing.NewInMemSource(testPlans()...))
		require.NoError(t, err)

		plans := catalog.List()
		require.Len(t, plans, 2)
		assert.Equal(t, "price_pro_monthly", plans[0].ID)
		assert.Equal(t, "price_pro_yearly", plans[1].ID)
	})

	t.Run("get known and unknown plan", func(t *testing.T) {
		t.Parallel()

		catalog, err := billing.NewCatalog(context.Background(), billing.NewInMemSource(testPlans()...))
		require.NoError(t, err)

		plan, err := catalog.Get("price_pro_yearly")
		require.NoError(t, err)
		assert.Equal(t, billing.IntervalYearly, plan.Interval)

		_, err = catalog.Get("price_enterprise")
		assert.ErrorIs(t, err, billing.ErrPlanNotFound)
	})

	t.Run("rejects invalid configurations", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name string
			plan billing.Plan
		}{
			{"unknown interval", billing.Plan{ID: "p1", Price: billing.Money{Amount: 100, Currency: "USD"}, Interval: "weekly"}},
			{"zero price", billing.Plan{ID: "p1", Price: billing.Money{Amount: 0, Currency: "USD"}, Interval: billing.IntervalMonthly}},
			{"missing currency", billing.Plan{ID: "p1", Price: billing.Money{Amount: 100}, Interval: billing.IntervalMonthly}},
			{"empty id", billing.Plan{Price: billing.Money{Amount: 100, Currency: "USD"}, Interval: billing.IntervalMonthly}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				_, err := billing.NewCatalog(context.Background(), billing.NewInMemSource(tc.plan))
				assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
			})
		}
	})

	t.Run("rejects duplicate plan IDs", func(t *testing.T) {
		t.Parallel()

		plan := testPlans()[0]
		_, err := billing.NewCatalog(context.Background(), billing.NewInMemSource(plan, plan))
		assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
	})
}

func TestYAMLSource(t *testing.T) {
	t.Parallel()

	t.Run("parses catalog file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - id: price_basic_monthly
    name: Basic
    price:
      amount: 9900
      currency: USD
    interval: monthly
  - id: price_basic_yearly
    name: Basic Yearly
    price:
      amount: 99900
      currency: USD
    interval: yearly
`), 0o644))

		plans, err := billing.NewYAMLSource(path).Load(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, "price_basic_monthly", plans[0].ID)
		assert.Equal(t, int64(9900), plans[0].Price.Amount)
		assert.Equal(t, billing.IntervalYearly, plans[1].Interval)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := billing.NewYAMLSource(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plans: []"), 0o644))

		_, err := billing.NewYAMLSource(path).Load(context.Background())
		assert.Error(t, err)
	})
}
