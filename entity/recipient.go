package entity

type RecipientStatus uint32

const (
	RecipientStatusUnknown RecipientStatus = iota
	RecipientStatusPending
	RecipientStatusSent
	RecipientStatusBounced
)

// Recipient is one (campaign, email) delivery target. The email and
// name are a snapshot captured at hydration time, not a live view of
// the contact. Status only moves forward: pending -> sent|bounced.
type Recipient struct {
	ID           *uint64         `json:"id,omitempty"`
	TenantID     *uint64         `json:"tenant_id,omitempty"`
	CampaignID   *uint64         `json:"campaign_id,omitempty"`
	ContactID    *uint64         `json:"contact_id,omitempty"`
	Email        *string         `json:"email,omitempty"`
	Name         *string         `json:"name,omitempty"`
	Status       RecipientStatus `json:"status,omitempty"`
	SentAt       *uint64         `json:"sent_at,omitempty"`
	DeliveredAt  *uint64         `json:"delivered_at,omitempty"`
	BouncedAt    *uint64         `json:"bounced_at,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreateTime   *uint64         `json:"create_time,omitempty"`
	UpdateTime   *uint64         `json:"update_time,omitempty"`
}

func (e *Recipient) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Recipient) GetTenantID() uint64 {
	if e != nil && e.TenantID != nil {
		return *e.TenantID
	}
	return 0
}

func (e *Recipient) GetCampaignID() uint64 {
	if e != nil && e.CampaignID != nil {
		return *e.CampaignID
	}
	return 0
}

func (e *Recipient) GetContactID() uint64 {
	if e != nil && e.ContactID != nil {
		return *e.ContactID
	}
	return 0
}

func (e *Recipient) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}

func (e *Recipient) GetName() string {
	if e != nil && e.Name != nil {
		return *e.Name
	}
	return ""
}

func (e *Recipient) GetStatus() RecipientStatus {
	if e != nil {
		return e.Status
	}
	return RecipientStatusUnknown
}

func (e *Recipient) GetErrorMessage() string {
	if e != nil && e.ErrorMessage != nil {
		return *e.ErrorMessage
	}
	return ""
}

func (e *Recipient) IsPending() bool {
	if e != nil {
		return e.Status == RecipientStatusPending
	}
	return false
}
