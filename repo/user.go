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
	ErrUserNotFound = errutil.NotFoundError(errors.New("user not found"))
)

type User struct {
	ID         *uint64
	TenantID   *uint64
	Email      *string
	Username   *string
	Password   *string
	Status     *uint32
	CreateTime *uint64
	UpdateTime *uint64
}

func (m *User) TableName() string {
	return "user_tab"
}

func (m *User) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *User) GetStatus() uint32 {
	if m != nil && m.Status != nil {
		return *m.Status
	}
	return 0
}

type UserRepo interface {
	Create(ctx context.Context, tenantID uint64, user *entity.User) (uint64, error)
	GetByID(ctx context.Context, tenantID, userID uint64) (*entity.User, error)
}

type userRepo struct {
	baseRepo BaseRepo
}

func NewUserRepo(_ context.Context, baseRepo BaseRepo) UserRepo {
	return &userRepo{baseRepo: baseRepo}
}

func (r *userRepo) Create(ctx context.Context, tenantID uint64, user *entity.User) (uint64, error) {
	userModel := ToUserModel(user)

	if err := ScopeToTenant(r.baseRepo, tenantID, 0).Create(ctx, userModel); err != nil {
		return 0, err
	}

	user.ID = userModel.ID
	user.TenantID = userModel.TenantID

	return userModel.GetID(), nil
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, userID uint64) (*entity.User, error) {
	user := new(User)

	if err := ScopeToTenant(r.baseRepo, tenantID, 0).Get(ctx, user, &Filter{
		Conditions: []*Condition{
			{
				Field:         "id",
				Value:         goutil.Uint64(userID),
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "status",
				Value: goutil.Uint32(uint32(entity.UserStatusNormal)),
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return ToUser(user), nil
}

func ToUser(user *User) *entity.User {
	return &entity.User{
		ID:         user.ID,
		TenantID:   user.TenantID,
		Email:      user.Email,
		Username:   user.Username,
		Password:   user.Password,
		Status:     entity.UserStatus(user.GetStatus()),
		CreateTime: user.CreateTime,
		UpdateTime: user.UpdateTime,
	}
}

func ToUserModel(user *entity.User) *User {
	return &User{
		ID:         user.ID,
		TenantID:   user.TenantID,
		Email:      user.Email,
		Username:   user.Username,
		Password:   user.Password,
		Status:     goutil.Uint32(uint32(user.GetStatus())),
		CreateTime: user.CreateTime,
		UpdateTime: user.UpdateTime,
	}
}
