package mq

type Payload uint32

const (
	PayloadUnknown Payload = iota
	PayloadHydrateCampaign
	PayloadSendCampaign
	PayloadRunAutomation
)

// Spec describes how the queue substrate must treat a payload:
// bounded retries with backoff, and a per-attempt timeout.
type Spec struct {
	Name           string
	MaxTries       uint64
	TimeoutSeconds uint64
}

var Payloads = map[Payload]Spec{
	PayloadHydrateCampaign: {
		Name:           "hydrate_campaign",
		MaxTries:       3,
		TimeoutSeconds: 600,
	},
	PayloadSendCampaign: {
		Name:           "send_campaign",
		MaxTries:       3,
		TimeoutSeconds: 600,
	},
	PayloadRunAutomation: {
		Name:           "run_automation",
		MaxTries:       3,
		TimeoutSeconds: 300,
	},
}

type HydrateCampaign struct {
	TenantID   *uint64 `json:"tenant_id,omitempty"`
	CampaignID *uint64 `json:"campaign_id,omitempty"`
}

func (m *HydrateCampaign) GetTenantID() uint64 {
	if m != nil && m.TenantID != nil {
		return *m.TenantID
	}
	return 0
}

func (m *HydrateCampaign) GetCampaignID() uint64 {
	if m != nil && m.CampaignID != nil {
		return *m.CampaignID
	}
	return 0
}

type SendCampaign struct {
	TenantID   *uint64 `json:"tenant_id,omitempty"`
	CampaignID *uint64 `json:"campaign_id,omitempty"`
}

func (m *SendCampaign) GetTenantID() uint64 {
	if m != nil && m.TenantID != nil {
		return *m.TenantID
	}
	return 0
}

func (m *SendCampaign) GetCampaignID() uint64 {
	if m != nil && m.CampaignID != nil {
		return *m.CampaignID
	}
	return 0
}

type RunAutomation struct {
	TenantID     *uint64                `json:"tenant_id,omitempty"`
	AutomationID *uint64                `json:"automation_id,omitempty"`
	ContactID    *uint64                `json:"contact_id,omitempty"`
	TriggerData  map[string]interface{} `json:"trigger_data,omitempty"`
}

func (m *RunAutomation) GetTenantID() uint64 {
	if m != nil && m.TenantID != nil {
		return *m.TenantID
	}
	return 0
}

func (m *RunAutomation) GetAutomationID() uint64 {
	if m != nil && m.AutomationID != nil {
		return *m.AutomationID
	}
	return 0
}

func (m *RunAutomation) GetContactID() uint64 {
	if m != nil && m.ContactID != nil {
		return *m.ContactID
	}
	return 0
}
