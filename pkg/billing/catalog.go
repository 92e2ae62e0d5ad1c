package billing

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// PlanSource defines how plans are loaded into the catalog.
type PlanSource interface {
	Load(ctx context.Context) ([]Plan, error)
}

// Catalog holds the immutable, ordered set of purchasable plans for the
// process lifetime. All components consult the same instance, so plan
// lookups are consistent across the whole workflow.
type Catalog struct {
	plans []Plan
	byID  map[string]Plan
}

// NewCatalog loads plans from the source and validates them.
// The order returned by the source is preserved for listing.
func NewCatalog(ctx context.Context, src PlanSource) (*Catalog, error) {
	if src == nil {
		panic("billing: PlanSource is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	byID := make(map[string]Plan, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
	}

	return &Catalog{plans: slices.Clone(plans), byID: byID}, nil
}

// List returns all plans in catalog order. The returned slice is a copy.
func (c *Catalog) List() []Plan {
	return slices.Clone(c.plans)
}

// Get returns the plan with the given ID or ErrPlanNotFound.
func (c *Catalog) Get(planID string) (Plan, error) {
	plan, ok := c.byID[planID]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// validatePlans ensures plan configurations are internally consistent.
// Catches configuration errors at startup instead of at checkout time.
func validatePlans(plans []Plan) error {
	if len(plans) == 0 {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("at least one plan is required"))
	}

	seen := make(map[string]struct{}, len(plans))
	for _, p := range plans {
		if p.ID == "" {
			return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan with empty ID"))
		}
		if _, dup := seen[p.ID]; dup {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate plan ID %s", p.ID))
		}
		seen[p.ID] = struct{}{}

		if !p.Interval.Valid() {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has unknown interval %q", p.ID, p.Interval))
		}
		if p.Price.Amount <= 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has non-positive price: %d", p.ID, p.Price.Amount))
		}
		if p.Price.Currency == "" {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has no currency", p.ID))
		}
	}
	return nil
}

type inMemSource struct {
	plans []Plan
}

// NewInMemSource returns a PlanSource serving a fixed plan list.
// Panics if no plans are provided so a misconfigured catalog fails at startup.
func NewInMemSource(plans ...Plan) PlanSource {
	if len(plans) == 0 {
		panic("billing: at least one plan is required")
	}
	return &inMemSource{plans: slices.Clone(plans)}
}

func (s *inMemSource) Load(_ context.Context) ([]Plan, error) {
	return slices.Clone(s.plans), nil
}
