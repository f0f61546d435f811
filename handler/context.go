package handler

import (
	"errors"

	"outreach/entity"
)

type ContextInfo struct {
	User   *entity.User
	Tenant *entity.Tenant
}

func (c *ContextInfo) SetUser(u *entity.User) {
	c.User = u
}

func (c *ContextInfo) SetTenant(t *entity.Tenant) {
	c.Tenant = t
}

func (c *ContextInfo) GetUserID() uint64 {
	return c.User.GetID()
}

func (c *ContextInfo) GetTenantID() uint64 {
	return c.Tenant.GetID()
}

type contextInfoValidator struct{}

func (v *contextInfoValidator) Validate(value interface{}) error {
	ci, ok := value.(ContextInfo)
	if !ok {
		return errors.New("expect ContextInfo")
	}

	if ci.Tenant.GetID() == 0 {
		return errors.New("missing tenant")
	}

	if ci.User.GetID() == 0 {
		return errors.New("missing user")
	}

	return nil
}

var ContextInfoValidator = new(contextInfoValidator)
