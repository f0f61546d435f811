package handler

import (
	"context"
	"time"

	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"
	"outreach/pkg/validator"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

type UserHandler interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, res *CreateUserResponse) error
}

type userHandler struct {
	tenantRepo repo.TenantRepo
	userRepo   repo.UserRepo
}

func NewUserHandler(tenantRepo repo.TenantRepo, userRepo repo.UserRepo) UserHandler {
	return &userHandler{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
	}
}

type CreateUserRequest struct {
	TenantID *uint64 `json:"tenant_id,omitempty"`
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (r *CreateUserRequest) GetTenantID() uint64 {
	if r != nil && r.TenantID != nil {
		return *r.TenantID
	}
	return 0
}

func (r *CreateUserRequest) GetPassword() string {
	if r != nil && r.Password != nil {
		return *r.Password
	}
	return ""
}

type CreateUserResponse struct {
	User *entity.User `json:"user,omitempty"`
}

var CreateUserValidator = validator.MustForm(map[string]validator.Validator{
	"tenant_id": &validator.UInt64{},
	"email":     EmailValidator(false),
	"username":  ResourceNameValidator(false),
	"password": &validator.String{
		MinLen: 8,
		MaxLen: 72,
	},
})

func (h *userHandler) CreateUser(ctx context.Context, req *CreateUserRequest, res *CreateUserResponse) error {
	if err := CreateUserValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	if _, err := h.tenantRepo.GetByID(ctx, req.GetTenantID()); err != nil {
		log.Ctx(ctx).Error().Msgf("get tenant err: %v", err)
		return err
	}

	hash, err := goutil.BCrypt(req.GetPassword())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("hash password err: %v", err)
		return err
	}

	now := uint64(time.Now().Unix())
	user := &entity.User{
		Email:      req.Email,
		Username:   req.Username,
		Password:   goutil.String(hash),
		Status:     entity.UserStatusNormal,
		CreateTime: goutil.Uint64(now),
		UpdateTime: goutil.Uint64(now),
	}

	if _, err := h.userRepo.Create(ctx, req.GetTenantID(), user); err != nil {
		log.Ctx(ctx).Error().Msgf("create user err: %v", err)
		return err
	}

	res.User = user

	return nil
}
