package handler

import (
	"context"
	"errors"

	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/validator"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

type TenantHandler interface {
	CreateTenant(ctx context.Context, req *CreateTenantRequest, res *CreateTenantResponse) error
}

type tenantHandler struct {
	tenantRepo repo.TenantRepo
}

func NewTenantHandler(tenantRepo repo.TenantRepo) TenantHandler {
	return &tenantHandler{
		tenantRepo: tenantRepo,
	}
}

type CreateTenantRequest struct {
	Name *string `json:"name,omitempty"`
}

func (r *CreateTenantRequest) GetName() string {
	if r != nil && r.Name != nil {
		return *r.Name
	}
	return ""
}

type CreateTenantResponse struct {
	Tenant *entity.Tenant `json:"tenant,omitempty"`
}

var CreateTenantValidator = validator.MustForm(map[string]validator.Validator{
	"name": ResourceNameValidator(false),
})

func (h *tenantHandler) CreateTenant(ctx context.Context, req *CreateTenantRequest, res *CreateTenantResponse) error {
	if err := CreateTenantValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	if _, err := h.tenantRepo.GetByName(ctx, req.GetName()); err == nil {
		return errutil.BadRequestError(errors.New("tenant already exists"))
	} else if !errutil.IsNotFoundError(err) {
		log.Ctx(ctx).Error().Msgf("get tenant err: %v", err)
		return err
	}

	tenant := entity.NewTenant(req.GetName(), entity.TenantStatusNormal)
	if _, err := h.tenantRepo.Create(ctx, tenant); err != nil {
		log.Ctx(ctx).Error().Msgf("create tenant err: %v", err)
		return err
	}

	res.Tenant = tenant

	return nil
}
