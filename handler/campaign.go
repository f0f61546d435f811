package handler

import (
	"context"
	"errors"
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

type CampaignHandler interface {
	CreateCampaign(ctx context.Context, req *CreateCampaignRequest, res *CreateCampaignResponse) error
	GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error
	RunCampaign(ctx context.Context, req *RunCampaignRequest, res *RunCampaignResponse) error
	PauseCampaign(ctx context.Context, req *PauseCampaignRequest, res *PauseCampaignResponse) error
	ResumeCampaign(ctx context.Context, req *ResumeCampaignRequest, res *ResumeCampaignResponse) error
}

type campaignHandler struct {
	campaignRepo repo.CampaignRepo
	segmentRepo  repo.SegmentRepo
	msgSender    mq.MessageSender
}

func NewCampaignHandler(campaignRepo repo.CampaignRepo, segmentRepo repo.SegmentRepo,
	msgSender mq.MessageSender) CampaignHandler {
	return &campaignHandler{
		campaignRepo: campaignRepo,
		segmentRepo:  segmentRepo,
		msgSender:    msgSender,
	}
}

type CampaignSettings struct {
	RecipientMode       *string  `json:"recipient_mode,omitempty"`
	RecipientContactIDs []uint64 `json:"recipient_contact_ids,omitempty"`
	SegmentID           *uint64  `json:"segment_id,omitempty"`
}

func (s *CampaignSettings) GetRecipientMode() string {
	if s != nil && s.RecipientMode != nil {
		return *s.RecipientMode
	}
	return ""
}

func (s *CampaignSettings) GetSegmentID() uint64 {
	if s != nil && s.SegmentID != nil {
		return *s.SegmentID
	}
	return 0
}

type CreateCampaignRequest struct {
	ContextInfo

	Name     *string           `json:"name,omitempty"`
	Subject  *string           `json:"subject,omitempty"`
	Content  *string           `json:"content,omitempty"`
	Settings *CampaignSettings `json:"settings,omitempty"`
	Schedule *uint64           `json:"schedule,omitempty"`
}

func (r *CreateCampaignRequest) ToCampaign() *entity.Campaign {
	now := uint64(time.Now().Unix())

	return &entity.Campaign{
		Name:    r.Name,
		Status:  entity.CampaignStatusDraft,
		Subject: r.Subject,
		Content: r.Content,
		Settings: &entity.CampaignSettings{
			RecipientMode:       r.Settings.RecipientMode,
			RecipientContactIDs: r.Settings.RecipientContactIDs,
			SegmentID:           r.Settings.SegmentID,
		},
		TotalRecipients: goutil.Uint64(0),
		SentCount:       goutil.Uint64(0),
		DeliveredCount:  goutil.Uint64(0),
		BouncedCount:    goutil.Uint64(0),
		Schedule:        r.Schedule,
		CreateTime:      goutil.Uint64(now),
		UpdateTime:      goutil.Uint64(now),
	}
}

type CreateCampaignResponse struct {
	Campaign *entity.Campaign `json:"campaign,omitempty"`
}

var CreateCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"name":        ResourceNameValidator(false),
	"subject": &validator.String{
		MinLen: 1,
		MaxLen: 200,
	},
	"content": &validator.String{
		MinLen: 1,
	},
	"settings": validator.MustForm(map[string]validator.Validator{
		"recipient_mode": &validator.String{
			In: []string{
				entity.RecipientModeSegment,
				entity.RecipientModeManual,
				entity.RecipientModeStatic,
			},
		},
		"recipient_contact_ids": &validator.Slice{
			Optional: true,
		},
		"segment_id": &validator.UInt64{
			Optional: true,
		},
	}),
	"schedule": &validator.UInt64{
		Optional: true,
	},
})

func (h *campaignHandler) CreateCampaign(ctx context.Context, req *CreateCampaignRequest, res *CreateCampaignResponse) error {
	if err := CreateCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	switch req.Settings.GetRecipientMode() {
	case entity.RecipientModeSegment:
		if req.Settings.GetSegmentID() == 0 {
			return errutil.ValidationError(errors.New("segment_id is required for segment mode"))
		}
		if _, err := h.segmentRepo.GetByID(ctx, req.GetTenantID(), req.Settings.GetSegmentID()); err != nil {
			log.Ctx(ctx).Error().Msgf("get segment err: %v", err)
			return err
		}
	case entity.RecipientModeManual, entity.RecipientModeStatic:
		if len(req.Settings.RecipientContactIDs) == 0 {
			return errutil.ValidationError(errors.New("recipient_contact_ids is required"))
		}
	}

	campaign := req.ToCampaign()
	if _, err := h.campaignRepo.Create(ctx, req.GetTenantID(), req.GetUserID(), campaign); err != nil {
		log.Ctx(ctx).Error().Msgf("create campaign err: %v", err)
		return err
	}

	res.Campaign = campaign

	return nil
}

type GetCampaignsRequest struct {
	ContextInfo

	Name       *string            `json:"name,omitempty"`
	Status     *uint32            `json:"status,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

type GetCampaignsResponse struct {
	Campaigns  []*entity.Campaign `json:"campaigns,omitempty"`
	Pagination *entity.Pagination `json:"pagination,omitempty"`
}

var GetCampaignsValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"name":        ResourceNameValidator(true),
})

func (h *campaignHandler) GetCampaigns(ctx context.Context, req *GetCampaignsRequest, res *GetCampaignsResponse) error {
	if err := GetCampaignsValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	campaigns, pagination, err := h.campaignRepo.GetMany(ctx, req.GetTenantID(), &repo.CampaignFilter{
		Name:       req.Name,
		Status:     req.Status,
		Pagination: req.Pagination,
	})
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaigns err: %v", err)
		return err
	}

	res.Campaigns = campaigns
	res.Pagination = pagination

	return nil
}

type RunCampaignRequest struct {
	ContextInfo

	CampaignID *uint64 `json:"campaign_id,omitempty"`
}

func (r *RunCampaignRequest) GetCampaignID() uint64 {
	if r != nil && r.CampaignID != nil {
		return *r.CampaignID
	}
	return 0
}

type RunCampaignResponse struct {
	Campaign *entity.Campaign `json:"campaign,omitempty"`
}

var RunCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{},
})

// RunCampaign flips a draft campaign to running and enqueues its
// hydration. Sending follows automatically once hydration completes.
func (h *campaignHandler) RunCampaign(ctx context.Context, req *RunCampaignRequest, res *RunCampaignResponse) error {
	if err := RunCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	campaign, err := h.campaignRepo.GetByID(ctx, req.GetTenantID(), req.GetCampaignID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	if campaign.IsTerminal() {
		return errutil.BadRequestError(errors.New("campaign already sent"))
	}

	if campaign.GetStatus() != entity.CampaignStatusRunning {
		campaign.Update(&entity.Campaign{Status: entity.CampaignStatusRunning})
		if err := h.campaignRepo.Update(ctx, req.GetTenantID(), campaign); err != nil {
			log.Ctx(ctx).Error().Msgf("update campaign err: %v", err)
			return err
		}
	}

	if err := h.msgSender.SendMessage(&mq.Message{
		Payload: mq.PayloadHydrateCampaign,
		Key:     fmt.Sprint(campaign.GetID()),
		Body: &mq.HydrateCampaign{
			TenantID:   goutil.Uint64(req.GetTenantID()),
			CampaignID: goutil.Uint64(campaign.GetID()),
		},
	}); err != nil {
		log.Ctx(ctx).Error().Msgf("send hydrate message err: %v", err)
		return err
	}

	res.Campaign = campaign

	return nil
}

type PauseCampaignRequest struct {
	ContextInfo

	CampaignID *uint64 `json:"campaign_id,omitempty"`
}

func (r *PauseCampaignRequest) GetCampaignID() uint64 {
	if r != nil && r.CampaignID != nil {
		return *r.CampaignID
	}
	return 0
}

type PauseCampaignResponse struct {
	Campaign *entity.Campaign `json:"campaign,omitempty"`
}

var PauseCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{},
})

func (h *campaignHandler) PauseCampaign(ctx context.Context, req *PauseCampaignRequest, res *PauseCampaignResponse) error {
	if err := PauseCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	campaign, err := h.campaignRepo.GetByID(ctx, req.GetTenantID(), req.GetCampaignID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	if campaign.IsTerminal() {
		return errutil.BadRequestError(errors.New("campaign already sent"))
	}

	// in-flight tasks observe the pause at their next start
	campaign.Update(&entity.Campaign{Status: entity.CampaignStatusPaused})
	if err := h.campaignRepo.Update(ctx, req.GetTenantID(), campaign); err != nil {
		log.Ctx(ctx).Error().Msgf("update campaign err: %v", err)
		return err
	}

	res.Campaign = campaign

	return nil
}

type ResumeCampaignRequest struct {
	ContextInfo

	CampaignID *uint64 `json:"campaign_id,omitempty"`
}

func (r *ResumeCampaignRequest) GetCampaignID() uint64 {
	if r != nil && r.CampaignID != nil {
		return *r.CampaignID
	}
	return 0
}

type ResumeCampaignResponse struct {
	Campaign *entity.Campaign `json:"campaign,omitempty"`
}

var ResumeCampaignValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"campaign_id": &validator.UInt64{},
})

// ResumeCampaign only flips the status back; any deferred task picks
// the campaign up on its scheduled recheck.
func (h *campaignHandler) ResumeCampaign(ctx context.Context, req *ResumeCampaignRequest, res *ResumeCampaignResponse) error {
	if err := ResumeCampaignValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	campaign, err := h.campaignRepo.GetByID(ctx, req.GetTenantID(), req.GetCampaignID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	if campaign.GetStatus() != entity.CampaignStatusPaused {
		return errutil.BadRequestError(errors.New("campaign is not paused"))
	}

	campaign.Update(&entity.Campaign{
		Status:   entity.CampaignStatusRunning,
		Settings: unpaused(campaign.GetSettings()),
	})
	if err := h.campaignRepo.Update(ctx, req.GetTenantID(), campaign); err != nil {
		log.Ctx(ctx).Error().Msgf("update campaign err: %v", err)
		return err
	}

	res.Campaign = campaign

	return nil
}

func unpaused(settings *entity.CampaignSettings) *entity.CampaignSettings {
	if settings == nil {
		return &entity.CampaignSettings{Paused: goutil.Bool(false)}
	}
	settings.Paused = goutil.Bool(false)
	return settings
}
