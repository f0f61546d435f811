package repo

import (
	"context"
	"errors"

	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"

	"gorm.io/gorm"
)

var (
	ErrTenantNotFound = errutil.NotFoundError(errors.New("tenant not found"))
)

const tenantCachePrefix = "tenant"

type Tenant struct {
	ID         *uint64
	Name       *string
	Status     *uint32
	CreateTime *uint64
	UpdateTime *uint64
}

func (m *Tenant) TableName() string {
	return "tenant_tab"
}

func (m *Tenant) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Tenant) GetStatus() uint32 {
	if m != nil && m.Status != nil {
		return *m.Status
	}
	return 0
}

type TenantRepo interface {
	Create(ctx context.Context, tenant *entity.Tenant) (uint64, error)
	GetByID(ctx context.Context, tenantID uint64) (*entity.Tenant, error)
	GetByName(ctx context.Context, tenantName string) (*entity.Tenant, error)
}

type tenantRepo struct {
	baseRepo  BaseRepo
	baseCache BaseCache
}

func NewTenantRepo(_ context.Context, baseRepo BaseRepo, baseCache BaseCache) TenantRepo {
	return &tenantRepo{
		baseRepo:  baseRepo,
		baseCache: baseCache,
	}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *entity.Tenant) (uint64, error) {
	tenantModel := ToTenantModel(tenant)

	if err := r.baseRepo.Create(ctx, tenantModel); err != nil {
		return 0, err
	}

	tenant.ID = tenantModel.ID

	return tenantModel.GetID(), nil
}

func (r *tenantRepo) GetByID(ctx context.Context, tenantID uint64) (*entity.Tenant, error) {
	if v, ok := r.baseCache.Get(ctx, tenantCachePrefix, tenantID, "id"); ok {
		if tenant, ok := v.(*entity.Tenant); ok {
			return tenant, nil
		}
	}

	tenant, err := r.get(ctx, []*Condition{
		{
			Field: "id",
			Value: goutil.Uint64(tenantID),
			Op:    OpEq,
		},
	})
	if err != nil {
		return nil, err
	}

	r.baseCache.Set(ctx, tenantCachePrefix, tenantID, "id", tenant)

	return tenant, nil
}

func (r *tenantRepo) GetByName(ctx context.Context, tenantName string) (*entity.Tenant, error) {
	return r.get(ctx, []*Condition{
		{
			Field: "name",
			Value: goutil.String(tenantName),
			Op:    OpEq,
		},
	})
}

func (r *tenantRepo) get(ctx context.Context, conditions []*Condition) (*entity.Tenant, error) {
	tenant := new(Tenant)

	if err := r.baseRepo.Get(ctx, tenant, &Filter{
		Conditions: r.baseRepo.BuildConditions(r.getBaseConditions(), conditions),
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	return ToTenant(tenant), nil
}

func (r *tenantRepo) getBaseConditions() []*Condition {
	return []*Condition{
		{
			Field: "status",
			Value: goutil.Uint32(uint32(entity.TenantStatusDeleted)),
			Op:    OpNotEq,
		},
	}
}

func ToTenant(tenant *Tenant) *entity.Tenant {
	return &entity.Tenant{
		ID:         tenant.ID,
		Name:       tenant.Name,
		Status:     entity.TenantStatus(tenant.GetStatus()),
		CreateTime: tenant.CreateTime,
		UpdateTime: tenant.UpdateTime,
	}
}

func ToTenantModel(tenant *entity.Tenant) *Tenant {
	return &Tenant{
		ID:         tenant.ID,
		Name:       tenant.Name,
		Status:     goutil.Uint32(uint32(tenant.GetStatus())),
		CreateTime: tenant.CreateTime,
		UpdateTime: tenant.UpdateTime,
	}
}
