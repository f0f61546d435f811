package repo

import (
	"context"
	"testing"

	"outreach/entity"
	"outreach/pkg/goutil"
)

// recordingRepo captures the filter and data a tenantScope forwards.
type recordingRepo struct {
	lastFilter *Filter
	lastData   interface{}
}

func (r *recordingRepo) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *recordingRepo) Create(_ context.Context, data interface{}) error {
	r.lastData = data
	return nil
}

func (r *recordingRepo) CreateMany(_ context.Context, _ interface{}, data interface{}) error {
	r.lastData = data
	return nil
}

func (r *recordingRepo) CreateIgnoreConflicts(_ context.Context, _ interface{}, data interface{}, _ []string) error {
	r.lastData = data
	return nil
}

func (r *recordingRepo) Get(_ context.Context, _ interface{}, f *Filter) error {
	r.lastFilter = f
	return nil
}

func (r *recordingRepo) GetMany(_ context.Context, _ interface{}, f *Filter) ([]interface{}, *entity.Pagination, error) {
	r.lastFilter = f
	return nil, nil, nil
}

func (r *recordingRepo) Count(_ context.Context, _ interface{}, f *Filter) (uint64, error) {
	r.lastFilter = f
	return 0, nil
}

func (r *recordingRepo) Update(_ context.Context, model interface{}) error {
	r.lastData = model
	return nil
}

func (r *recordingRepo) UpdateColumns(_ context.Context, _ interface{}, f *Filter, _ map[string]interface{}) error {
	r.lastFilter = f
	return nil
}

func (r *recordingRepo) BuildConditions(base, extra []*Condition) []*Condition {
	return new(baseRepo).BuildConditions(base, extra)
}

func (r *recordingRepo) Close(_ context.Context) error {
	return nil
}

func TestTenantScopePrependsTenantFilter(t *testing.T) {
	rec := new(recordingRepo)
	scoped := ScopeToTenant(rec, 4, 0)

	err := scoped.Get(context.Background(), new(Campaign), &Filter{
		Conditions: []*Condition{
			{Field: "id", Value: goutil.Uint64(1), Op: OpEq},
		},
	})
	if err != nil {
		t.Fatalf("get err: %v", err)
	}

	conditions := rec.lastFilter.Conditions
	if len(conditions) != 2 {
		t.Fatalf("expect 2 conditions, got %d", len(conditions))
	}
	if conditions[0].Field != "tenant_id" {
		t.Errorf("expect tenant_id first, got %q", conditions[0].Field)
	}
	if got := conditions[0].Value.(*uint64); *got != 4 {
		t.Errorf("expect tenant 4, got %d", *got)
	}
	if conditions[0].NextLogicalOp != LogicalOpAnd {
		t.Errorf("expect AND join, got %q", conditions[0].NextLogicalOp)
	}
}

func TestTenantScopeFiltersEvenWithoutExtraConditions(t *testing.T) {
	rec := new(recordingRepo)
	scoped := ScopeToTenant(rec, 4, 0)

	if _, err := scoped.Count(context.Background(), new(Recipient), nil); err != nil {
		t.Fatalf("count err: %v", err)
	}

	conditions := rec.lastFilter.Conditions
	if len(conditions) != 1 || conditions[0].Field != "tenant_id" {
		t.Fatalf("expect lone tenant_id condition, got %v", conditions)
	}
}

func TestTenantScopeDefaultsOnCreate(t *testing.T) {
	rec := new(recordingRepo)
	scoped := ScopeToTenant(rec, 4, 9)

	campaign := &Campaign{Name: goutil.String("welcome")}
	if err := scoped.Create(context.Background(), campaign); err != nil {
		t.Fatalf("create err: %v", err)
	}

	if campaign.TenantID == nil || *campaign.TenantID != 4 {
		t.Errorf("expect tenant_id defaulted to 4, got %v", campaign.TenantID)
	}
	if campaign.CreatorID == nil || *campaign.CreatorID != 9 {
		t.Errorf("expect creator_id defaulted to 9, got %v", campaign.CreatorID)
	}
}

func TestTenantScopeDoesNotOverrideExplicitTenant(t *testing.T) {
	rec := new(recordingRepo)
	scoped := ScopeToTenant(rec, 4, 9)

	campaign := &Campaign{TenantID: goutil.Uint64(7)}
	if err := scoped.Create(context.Background(), campaign); err != nil {
		t.Fatalf("create err: %v", err)
	}

	if *campaign.TenantID != 7 {
		t.Errorf("expect explicit tenant_id preserved, got %d", *campaign.TenantID)
	}
}

func TestTenantScopeDefaultsOnSlice(t *testing.T) {
	rec := new(recordingRepo)
	scoped := ScopeToTenant(rec, 4, 0)

	recipients := []*Recipient{
		{Email: goutil.String("a@x.com")},
		{Email: goutil.String("b@x.com")},
	}
	if err := scoped.CreateIgnoreConflicts(context.Background(), new(Recipient), recipients, recipientConflictColumns); err != nil {
		t.Fatalf("create err: %v", err)
	}

	for _, r := range recipients {
		if r.TenantID == nil || *r.TenantID != 4 {
			t.Errorf("expect tenant_id defaulted on %s", r.GetEmail())
		}
	}
}

func TestTenantScopeZeroCreatorSkipped(t *testing.T) {
	rec := new(recordingRepo)
	scoped := ScopeToTenant(rec, 4, 0)

	campaign := new(Campaign)
	if err := scoped.Create(context.Background(), campaign); err != nil {
		t.Fatalf("create err: %v", err)
	}

	if campaign.CreatorID != nil {
		t.Errorf("expect creator_id left nil when no acting user, got %v", campaign.CreatorID)
	}
}
