package handler

import (
	"context"
	"fmt"
	"time"

	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"
	"outreach/pkg/mq"
	"outreach/pkg/validator"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

type AutomationHandler interface {
	CreateAutomation(ctx context.Context, req *CreateAutomationRequest, res *CreateAutomationResponse) error
	TriggerAutomation(ctx context.Context, req *TriggerAutomationRequest, res *TriggerAutomationResponse) error
}

type automationHandler struct {
	automationRepo repo.AutomationRepo
	campaignRepo   repo.CampaignRepo
	msgSender      mq.MessageSender
}

func NewAutomationHandler(automationRepo repo.AutomationRepo, campaignRepo repo.CampaignRepo,
	msgSender mq.MessageSender) AutomationHandler {
	return &automationHandler{
		automationRepo: automationRepo,
		campaignRepo:   campaignRepo,
		msgSender:      msgSender,
	}
}

type CreateAutomationRequest struct {
	ContextInfo

	CampaignID   *uint64                `json:"campaign_id,omitempty"`
	TriggerEvent *string                `json:"trigger_event,omitempty"`
	DelayMinutes *uint64                `json:"delay_minutes,omitempty"`
	Action       *string                `json:"action,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

func (r *CreateAutomationRequest) GetCampaignID() uint64 {
	if r != nil && r.CampaignID != nil {
		return *r.CampaignID
	}
	return 0
}

func (r *CreateAutomationRequest) ToAutomation() *entity.Automation {
	now := uint64(time.Now().Unix())

	delayMinutes := r.DelayMinutes
	if delayMinutes == nil {
		delayMinutes = goutil.Uint64(0)
	}

	return &entity.Automation{
		CampaignID:   r.CampaignID,
		TriggerEvent: r.TriggerEvent,
		DelayMinutes: delayMinutes,
		Action:       r.Action,
		Metadata:     r.Metadata,
		Status:       entity.AutomationStatusNormal,
		CreateTime:   goutil.Uint64(now),
		UpdateTime:   goutil.Uint64(now),
	}
}

type CreateAutomationResponse struct {
	Automation *entity.Automation `json:"automation,omitempty"`
}

var CreateAutomationValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{},
	"trigger_event": &validator.String{
		MinLen: 1,
		MaxLen: 60,
	},
	"delay_minutes": &validator.UInt64{
		Optional: true,
	},
	"action": &validator.String{
		In: []string{
			entity.AutomationActionSendEmail,
			entity.AutomationActionAddToSegment,
			entity.AutomationActionUpdateContact,
		},
	},
})

func (h *automationHandler) CreateAutomation(ctx context.Context, req *CreateAutomationRequest, res *CreateAutomationResponse) error {
	if err := CreateAutomationValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	// the automation must reference a campaign of the acting tenant
	if _, err := h.campaignRepo.GetByID(ctx, req.GetTenantID(), req.GetCampaignID()); err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	automation := req.ToAutomation()
	if _, err := h.automationRepo.Create(ctx, req.GetTenantID(), automation); err != nil {
		log.Ctx(ctx).Error().Msgf("create automation err: %v", err)
		return err
	}

	res.Automation = automation

	return nil
}

type TriggerAutomationRequest struct {
	ContextInfo

	TriggerEvent *string                `json:"trigger_event,omitempty"`
	ContactID    *uint64                `json:"contact_id,omitempty"`
	TriggerData  map[string]interface{} `json:"trigger_data,omitempty"`
}

func (r *TriggerAutomationRequest) GetTriggerEvent() string {
	if r != nil && r.TriggerEvent != nil {
		return *r.TriggerEvent
	}
	return ""
}

func (r *TriggerAutomationRequest) GetContactID() uint64 {
	if r != nil && r.ContactID != nil {
		return *r.ContactID
	}
	return 0
}

type TriggerAutomationResponse struct {
	Dispatched *uint64 `json:"dispatched,omitempty"`
}

var TriggerAutomationValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"trigger_event": &validator.String{
		MinLen: 1,
		MaxLen: 60,
	},
	"contact_id": &validator.UInt64{},
})

// TriggerAutomation fans a business event out to every automation of
// the acting tenant bound to the event. Each automation runs as its
// own queued task.
func (h *automationHandler) TriggerAutomation(ctx context.Context, req *TriggerAutomationRequest, res *TriggerAutomationResponse) error {
	if err := TriggerAutomationValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	automations, err := h.automationRepo.GetByTriggerEvent(ctx, req.GetTenantID(), req.GetTriggerEvent())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get automations err: %v", err)
		return err
	}

	var dispatched uint64
	for _, automation := range automations {
		if err := h.msgSender.SendMessage(&mq.Message{
			Payload: mq.PayloadRunAutomation,
			Key:     fmt.Sprint(req.GetContactID()),
			Body: &mq.RunAutomation{
				TenantID:     goutil.Uint64(req.GetTenantID()),
				AutomationID: goutil.Uint64(automation.GetID()),
				ContactID:    goutil.Uint64(req.GetContactID()),
				TriggerData:  req.TriggerData,
			},
		}); err != nil {
			log.Ctx(ctx).Error().Msgf("send run_automation message err: %v, automation_id: %d",
				err, automation.GetID())
			return err
		}
		dispatched++
	}

	res.Dispatched = goutil.Uint64(dispatched)

	return nil
}
