package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/httputil"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

type ContextInfo interface {
	SetUser(user *entity.User)
	SetTenant(tenant *entity.Tenant)
}

type contextKey string

const (
	userKey   contextKey = "user"
	tenantKey contextKey = "tenant"
)

type tenantMiddleware struct {
	tenantRepo repo.TenantRepo
	userRepo   repo.UserRepo
}

func NewTenantMiddleware(tenantRepo repo.TenantRepo, userRepo repo.UserRepo) Middleware {
	return &tenantMiddleware{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
	}
}

func (m *tenantMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID, err := strconv.ParseUint(r.Header.Get("X-Tenant-ID"), 10, 64)
		if err != nil || tenantID == 0 {
			log.Ctx(ctx).Error().Msg("tenant header missing or invalid")
			m.returnErr(w)
			return
		}

		tenant, err := m.tenantRepo.GetByID(ctx, tenantID)
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get tenant error, err: %v, tenantID: %v", err, tenantID)
			m.returnErr(w)
			return
		}

		if !tenant.IsNormal() {
			log.Ctx(ctx).Error().Msgf("tenant not active, tenantID: %v", tenantID)
			m.returnErr(w)
			return
		}

		userID, err := strconv.ParseUint(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || userID == 0 {
			log.Ctx(ctx).Error().Msg("user header missing or invalid")
			m.returnErr(w)
			return
		}

		user, err := m.userRepo.GetByID(ctx, tenantID, userID)
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get user error, err: %v, userID: %v", err, userID)
			m.returnErr(w)
			return
		}

		ctx = context.WithValue(ctx, userKey, user)
		ctx = context.WithValue(ctx, tenantKey, tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *tenantMiddleware) returnErr(w http.ResponseWriter) {
	// abstract all errors as unauthorized
	httputil.ReturnServerResponse(w, nil, errutil.UnauthorizedError(errors.New("unauthorized")))
}

func GetUserFromContext(ctx context.Context) (*entity.User, bool) {
	val := ctx.Value(userKey)
	if user, ok := val.(*entity.User); ok {
		return user, true
	}
	return nil, false
}

func GetTenantFromContext(ctx context.Context) (*entity.Tenant, bool) {
	val := ctx.Value(tenantKey)
	if tenant, ok := val.(*entity.Tenant); ok {
		return tenant, true
	}
	return nil, false
}
