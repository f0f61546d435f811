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
	ErrContactNotFound = errutil.NotFoundError(errors.New("contact not found"))

	// contactPatchColumns is the set of fields the update_contact
	// automation action may touch.
	contactPatchColumns = []string{"first_name", "last_name", "email"}
)

type Contact struct {
	ID        *uint64
	TenantID  *uint64
	FirstName *string
	LastName  *string
	Email     *string
}

func (m *Contact) TableName() string {
	return "contact_tab"
}

func (m *Contact) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

// ContactRepo reads the CRM collaborator's contact directory. All
// reads except GetAnyByID are tenant-scoped; GetAnyByID exists so the
// automation dispatcher can verify tenant consistency itself before
// acting.
type ContactRepo interface {
	GetAnyByID(ctx context.Context, contactID uint64) (*entity.Contact, error)
	// GetManyByIDs returns the tenant's contacts among contactIDs that
	// have a non-empty email, in stable id order.
	GetManyByIDs(ctx context.Context, tenantID uint64, contactIDs []uint64, p *entity.Pagination) ([]*entity.Contact, *entity.Pagination, error)
	// UpdateFields applies a whitelisted patch to one contact.
	UpdateFields(ctx context.Context, tenantID, contactID uint64, fields map[string]interface{}) error
}

type contactRepo struct {
	baseRepo BaseRepo
}

func NewContactRepo(_ context.Context, baseRepo BaseRepo) ContactRepo {
	return &contactRepo{baseRepo: baseRepo}
}

func (r *contactRepo) scoped(tenantID uint64) BaseRepo {
	return ScopeToTenant(r.baseRepo, tenantID, 0)
}

func (r *contactRepo) GetAnyByID(ctx context.Context, contactID uint64) (*entity.Contact, error) {
	contact := new(Contact)

	if err := r.baseRepo.Get(ctx, contact, &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(contactID),
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return ToContact(contact), nil
}

func (r *contactRepo) GetManyByIDs(ctx context.Context, tenantID uint64, contactIDs []uint64, p *entity.Pagination) ([]*entity.Contact, *entity.Pagination, error) {
	if len(contactIDs) == 0 {
		return nil, p, nil
	}

	res, pNew, err := r.scoped(tenantID).GetMany(ctx, new(Contact), &Filter{
		Conditions: []*Condition{
			{
				Field:         "id",
				Value:         contactIDs,
				Op:            OpIn,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				// NULL emails fail this comparison too
				Field: "email",
				Value: goutil.String(""),
				Op:    OpNotEq,
			},
		},
		Pagination: p,
		OrderBy:    "id ASC",
	})
	if err != nil {
		return nil, nil, err
	}

	contacts := make([]*entity.Contact, 0, len(res))
	for _, m := range res {
		contacts = append(contacts, ToContact(m.(*Contact)))
	}

	return contacts, pNew, nil
}

func (r *contactRepo) UpdateFields(ctx context.Context, tenantID, contactID uint64, fields map[string]interface{}) error {
	values := make(map[string]interface{})
	for _, col := range contactPatchColumns {
		if v, ok := fields[col]; ok {
			values[col] = v
		}
	}

	if len(values) == 0 {
		return nil
	}

	return r.scoped(tenantID).UpdateColumns(ctx, new(Contact), &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(contactID),
				Op:    OpEq,
			},
		},
	}, values)
}

func ToContact(contact *Contact) *entity.Contact {
	return &entity.Contact{
		ID:        contact.ID,
		TenantID:  contact.TenantID,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
	}
}
