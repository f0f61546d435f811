package entity

import "encoding/json"

type AutomationStatus uint32

const (
	AutomationStatusUnknown AutomationStatus = iota
	AutomationStatusNormal
	AutomationStatusDisabled
)

const (
	AutomationActionSendEmail     = "send_email"
	AutomationActionAddToSegment  = "add_to_segment"
	AutomationActionUpdateContact = "update_contact"
)

// AutomationMetadata is free-form and interpreted per action.
type AutomationMetadata map[string]interface{}

func (m AutomationMetadata) GetSegmentID() (uint64, bool) {
	v, ok := m["segment_id"]
	if !ok {
		return 0, false
	}

	switch id := v.(type) {
	case float64:
		return uint64(id), true
	case uint64:
		return id, true
	default:
		return 0, false
	}
}

func (m AutomationMetadata) GetContactUpdates() (map[string]interface{}, bool) {
	v, ok := m["contact_updates"]
	if !ok {
		return nil, false
	}

	updates, ok := v.(map[string]interface{})
	if !ok || len(updates) == 0 {
		return nil, false
	}
	return updates, true
}

func (m AutomationMetadata) ToString() (string, error) {
	if m == nil {
		return "{}", nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Automation reacts to a trigger event for one contact and performs
// one bounded action against its campaign's tenant.
type Automation struct {
	ID           *uint64            `json:"id,omitempty"`
	TenantID     *uint64            `json:"tenant_id,omitempty"`
	CampaignID   *uint64            `json:"campaign_id,omitempty"`
	TriggerEvent *string            `json:"trigger_event,omitempty"`
	DelayMinutes *uint64            `json:"delay_minutes,omitempty"`
	Action       *string            `json:"action,omitempty"`
	Metadata     AutomationMetadata `json:"metadata,omitempty"`
	Status       AutomationStatus   `json:"status,omitempty"`
	CreateTime   *uint64            `json:"create_time,omitempty"`
	UpdateTime   *uint64            `json:"update_time,omitempty"`
}

func (e *Automation) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Automation) GetTenantID() uint64 {
	if e != nil && e.TenantID != nil {
		return *e.TenantID
	}
	return 0
}

func (e *Automation) GetCampaignID() uint64 {
	if e != nil && e.CampaignID != nil {
		return *e.CampaignID
	}
	return 0
}

func (e *Automation) GetTriggerEvent() string {
	if e != nil && e.TriggerEvent != nil {
		return *e.TriggerEvent
	}
	return ""
}

func (e *Automation) GetDelayMinutes() uint64 {
	if e != nil && e.DelayMinutes != nil {
		return *e.DelayMinutes
	}
	return 0
}

func (e *Automation) GetAction() string {
	if e != nil && e.Action != nil {
		return *e.Action
	}
	return ""
}

func (e *Automation) GetStatus() AutomationStatus {
	if e != nil {
		return e.Status
	}
	return AutomationStatusUnknown
}

func (e *Automation) GetMetadata() AutomationMetadata {
	if e != nil && e.Metadata != nil {
		return e.Metadata
	}
	return nil
}
