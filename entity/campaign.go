package entity

import (
	"time"

	"outreach/pkg/goutil"
)

type CampaignStatus uint32

const (
	CampaignStatusUnknown CampaignStatus = iota
	CampaignStatusDraft
	CampaignStatusRunning
	CampaignStatusPaused
	CampaignStatusSent
	CampaignStatusCompleted
)

const (
	RecipientModeSegment = "segment"
	RecipientModeManual  = "manual"
	RecipientModeStatic  = "static"
)

// CampaignSettings is the campaign's targeting rule plus the
// cooperative pause flag, stored as a JSON blob.
type CampaignSettings struct {
	RecipientMode       *string  `json:"recipient_mode,omitempty"`
	RecipientContactIDs []uint64 `json:"recipient_contact_ids,omitempty"`
	SegmentID           *uint64  `json:"segment_id,omitempty"`
	Paused              *bool    `json:"paused,omitempty"`
}

func (e *CampaignSettings) GetRecipientMode() string {
	if e != nil && e.RecipientMode != nil {
		return *e.RecipientMode
	}
	return ""
}

func (e *CampaignSettings) GetRecipientContactIDs() []uint64 {
	if e != nil {
		return e.RecipientContactIDs
	}
	return nil
}

func (e *CampaignSettings) GetSegmentID() uint64 {
	if e != nil && e.SegmentID != nil {
		return *e.SegmentID
	}
	return 0
}

func (e *CampaignSettings) GetPaused() bool {
	if e != nil && e.Paused != nil {
		return *e.Paused
	}
	return false
}

type Campaign struct {
	ID              *uint64           `json:"id,omitempty"`
	TenantID        *uint64           `json:"tenant_id,omitempty"`
	CreatorID       *uint64           `json:"creator_id,omitempty"`
	Name            *string           `json:"name,omitempty"`
	Status          CampaignStatus    `json:"status,omitempty"`
	Settings        *CampaignSettings `json:"settings,omitempty"`
	Subject         *string           `json:"subject,omitempty"`
	Content         *string           `json:"content,omitempty"`
	TotalRecipients *uint64           `json:"total_recipients,omitempty"`
	SentCount       *uint64           `json:"sent_count,omitempty"`
	DeliveredCount  *uint64           `json:"delivered_count,omitempty"`
	BouncedCount    *uint64           `json:"bounced_count,omitempty"`
	Schedule        *uint64           `json:"schedule,omitempty"`
	SentAt          *uint64           `json:"sent_at,omitempty"`
	CreateTime      *uint64           `json:"create_time,omitempty"`
	UpdateTime      *uint64           `json:"update_time,omitempty"`
}

func (e *Campaign) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Campaign) GetTenantID() uint64 {
	if e != nil && e.TenantID != nil {
		return *e.TenantID
	}
	return 0
}

func (e *Campaign) GetStatus() CampaignStatus {
	if e != nil {
		return e.Status
	}
	return CampaignStatusUnknown
}

func (e *Campaign) GetSettings() *CampaignSettings {
	if e != nil && e.Settings != nil {
		return e.Settings
	}
	return nil
}

func (e *Campaign) GetSubject() string {
	if e != nil && e.Subject != nil {
		return *e.Subject
	}
	return ""
}

func (e *Campaign) GetContent() string {
	if e != nil && e.Content != nil {
		return *e.Content
	}
	return ""
}

func (e *Campaign) GetTotalRecipients() uint64 {
	if e != nil && e.TotalRecipients != nil {
		return *e.TotalRecipients
	}
	return 0
}

func (e *Campaign) GetSentCount() uint64 {
	if e != nil && e.SentCount != nil {
		return *e.SentCount
	}
	return 0
}

func (e *Campaign) GetDeliveredCount() uint64 {
	if e != nil && e.DeliveredCount != nil {
		return *e.DeliveredCount
	}
	return 0
}

func (e *Campaign) GetBouncedCount() uint64 {
	if e != nil && e.BouncedCount != nil {
		return *e.BouncedCount
	}
	return 0
}

func (e *Campaign) GetSchedule() uint64 {
	if e != nil && e.Schedule != nil {
		return *e.Schedule
	}
	return 0
}

// IsPaused is the cooperative pause gate, consulted once at the start
// of hydration and sending.
func (e *Campaign) IsPaused() bool {
	if e == nil {
		return false
	}
	return e.Status == CampaignStatusPaused || e.GetSettings().GetPaused()
}

// IsTerminal reports whether the campaign can no longer be hydrated.
func (e *Campaign) IsTerminal() bool {
	if e == nil {
		return false
	}
	return e.Status == CampaignStatusSent || e.Status == CampaignStatusCompleted
}

func (e *Campaign) Update(newCampaign *Campaign) bool {
	var hasChange bool

	if newCampaign.Status != CampaignStatusUnknown && e.Status != newCampaign.Status {
		hasChange = true
		e.Status = newCampaign.Status
	}

	if newCampaign.Settings != nil {
		hasChange = true
		e.Settings = newCampaign.Settings
	}

	if newCampaign.TotalRecipients != nil && e.GetTotalRecipients() != newCampaign.GetTotalRecipients() {
		hasChange = true
		e.TotalRecipients = newCampaign.TotalRecipients
	}

	if hasChange {
		e.UpdateTime = goutil.Uint64(uint64(time.Now().Unix()))
	}

	return hasChange
}
