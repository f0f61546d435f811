package repo

import (
	"context"
	"reflect"

	"outreach/entity"
	"outreach/pkg/goutil"
)

// tenantScope decorates a BaseRepo so that every read, count, and
// column update is filtered to one tenant, and every create defaults
// tenant_id (and creator_id, when the model carries one) from the
// acting context. Domain repos construct one per call with the tenant
// id threaded in explicitly; there is no ambient tenant state.
type tenantScope struct {
	base      BaseRepo
	tenantID  uint64
	creatorID uint64
}

// ScopeToTenant wraps base for one tenant. creatorID may be zero when
// the write path has no acting user (queue workers).
func ScopeToTenant(base BaseRepo, tenantID, creatorID uint64) BaseRepo {
	return &tenantScope{
		base:      base,
		tenantID:  tenantID,
		creatorID: creatorID,
	}
}

func (s *tenantScope) tenantCondition() []*Condition {
	return []*Condition{
		{
			Field: "tenant_id",
			Value: goutil.Uint64(s.tenantID),
			Op:    OpEq,
		},
	}
}

func (s *tenantScope) scopeFilter(f *Filter) *Filter {
	if f == nil {
		f = new(Filter)
	}
	return &Filter{
		Conditions: s.base.BuildConditions(s.tenantCondition(), f.Conditions),
		Pagination: f.Pagination,
		OrderBy:    f.OrderBy,
	}
}

// setDefaults fills nil TenantID/CreatorID pointer fields on a model
// struct, a slice of model structs, or pointers to either.
func (s *tenantScope) setDefaults(data interface{}) {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			for elem.Kind() == reflect.Ptr {
				if elem.IsNil() {
					elem = reflect.Value{}
					break
				}
				elem = elem.Elem()
			}
			if elem.IsValid() && elem.Kind() == reflect.Struct {
				s.setStructDefaults(elem)
			}
		}
	case reflect.Struct:
		s.setStructDefaults(v)
	}
}

func (s *tenantScope) setStructDefaults(v reflect.Value) {
	s.setUint64Field(v, "TenantID", s.tenantID)
	if s.creatorID > 0 {
		s.setUint64Field(v, "CreatorID", s.creatorID)
	}
}

func (s *tenantScope) setUint64Field(v reflect.Value, name string, value uint64) {
	f := v.FieldByName(name)
	if !f.IsValid() || !f.CanSet() {
		return
	}

	if f.Kind() == reflect.Ptr && f.Type().Elem().Kind() == reflect.Uint64 && f.IsNil() {
		f.Set(reflect.ValueOf(goutil.Uint64(value)))
	}
}

func (s *tenantScope) Create(ctx context.Context, data interface{}) error {
	s.setDefaults(data)
	return s.base.Create(ctx, data)
}

func (s *tenantScope) CreateMany(ctx context.Context, model interface{}, data interface{}) error {
	s.setDefaults(data)
	return s.base.CreateMany(ctx, model, data)
}

func (s *tenantScope) CreateIgnoreConflicts(ctx context.Context, model interface{}, data interface{}, conflictColumns []string) error {
	s.setDefaults(data)
	return s.base.CreateIgnoreConflicts(ctx, model, data, conflictColumns)
}

func (s *tenantScope) Get(ctx context.Context, model interface{}, f *Filter) error {
	return s.base.Get(ctx, model, s.scopeFilter(f))
}

func (s *tenantScope) GetMany(ctx context.Context, model interface{}, f *Filter) ([]interface{}, *entity.Pagination, error) {
	return s.base.GetMany(ctx, model, s.scopeFilter(f))
}

func (s *tenantScope) Count(ctx context.Context, model interface{}, f *Filter) (uint64, error) {
	return s.base.Count(ctx, model, s.scopeFilter(f))
}

func (s *tenantScope) Update(ctx context.Context, model interface{}) error {
	s.setDefaults(model)
	return s.base.Update(ctx, model)
}

func (s *tenantScope) UpdateColumns(ctx context.Context, model interface{}, f *Filter, values map[string]interface{}) error {
	return s.base.UpdateColumns(ctx, model, s.scopeFilter(f), values)
}

func (s *tenantScope) BuildConditions(base, extra []*Condition) []*Condition {
	return s.base.BuildConditions(base, extra)
}

func (s *tenantScope) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.base.RunTx(ctx, fn)
}

func (s *tenantScope) Close(ctx context.Context) error {
	return s.base.Close(ctx)
}
