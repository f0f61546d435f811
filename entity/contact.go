package entity

import "outreach/pkg/goutil"

// Contact is owned by the CRM collaborator; the pipeline reads it to
// hydrate recipients and patches it via the update_contact action.
type Contact struct {
	ID        *uint64 `json:"id,omitempty"`
	TenantID  *uint64 `json:"tenant_id,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

func (e *Contact) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Contact) GetTenantID() uint64 {
	if e != nil && e.TenantID != nil {
		return *e.TenantID
	}
	return 0
}

func (e *Contact) GetFirstName() string {
	if e != nil && e.FirstName != nil {
		return *e.FirstName
	}
	return ""
}

func (e *Contact) GetLastName() string {
	if e != nil && e.LastName != nil {
		return *e.LastName
	}
	return ""
}

func (e *Contact) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}

// FullName returns the snapshot name for a recipient row, nil when the
// contact has no name at all.
func (e *Contact) FullName() *string {
	name := goutil.JoinName(e.GetFirstName(), e.GetLastName())
	if name == "" {
		return nil
	}
	return goutil.String(name)
}
