package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"

	"gorm.io/gorm"
)

var (
	ErrCampaignNotFound = errutil.NotFoundError(errors.New("campaign not found"))
)

type Campaign struct {
	ID              *uint64
	TenantID        *uint64
	CreatorID       *uint64
	Name            *string
	Status          *uint32
	Settings        *string
	Subject         *string
	Content         *string
	TotalRecipients *uint64
	SentCount       *uint64
	DeliveredCount  *uint64
	BouncedCount    *uint64
	Schedule        *uint64
	SentAt          *uint64
	CreateTime      *uint64
	UpdateTime      *uint64
}

func (m *Campaign) TableName() string {
	return "campaign_tab"
}

func (m *Campaign) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Campaign) GetStatus() uint32 {
	if m != nil && m.Status != nil {
		return *m.Status
	}
	return 0
}

func (m *Campaign) GetSettings() string {
	if m != nil && m.Settings != nil {
		return *m.Settings
	}
	return ""
}

type CampaignFilter struct {
	Name       *string
	Status     *uint32
	Pagination *entity.Pagination
}

type CampaignRepo interface {
	Create(ctx context.Context, tenantID, creatorID uint64, campaign *entity.Campaign) (uint64, error)
	GetByID(ctx context.Context, tenantID, campaignID uint64) (*entity.Campaign, error)
	GetMany(ctx context.Context, tenantID uint64, f *CampaignFilter) ([]*entity.Campaign, *entity.Pagination, error)
	Update(ctx context.Context, tenantID uint64, campaign *entity.Campaign) error
	// SetTotalRecipients persists the authoritative recipient count,
	// not a delta, so repeated hydrations self-heal.
	SetTotalRecipients(ctx context.Context, tenantID, campaignID, total uint64) error
	// FinishSendRun atomically increments the send counters and flips
	// the campaign to sent. Increments, not read-modify-write, so
	// concurrent send completions across campaigns stay correct.
	FinishSendRun(ctx context.Context, tenantID, campaignID, sent, delivered, bounced uint64) error
	// GetDueCampaigns scans across tenants for the scheduler job.
	GetDueCampaigns(ctx context.Context, now uint64) ([]*entity.Campaign, error)
}

type campaignRepo struct {
	baseRepo BaseRepo
}

func NewCampaignRepo(_ context.Context, baseRepo BaseRepo) CampaignRepo {
	return &campaignRepo{baseRepo: baseRepo}
}

func (r *campaignRepo) scoped(tenantID, creatorID uint64) BaseRepo {
	return ScopeToTenant(r.baseRepo, tenantID, creatorID)
}

func (r *campaignRepo) Create(ctx context.Context, tenantID, creatorID uint64, campaign *entity.Campaign) (uint64, error) {
	campaignModel, err := ToCampaignModel(campaign)
	if err != nil {
		return 0, err
	}

	if err := r.scoped(tenantID, creatorID).Create(ctx, campaignModel); err != nil {
		return 0, err
	}

	campaign.ID = campaignModel.ID
	campaign.TenantID = campaignModel.TenantID
	campaign.CreatorID = campaignModel.CreatorID

	return campaignModel.GetID(), nil
}

func (r *campaignRepo) GetByID(ctx context.Context, tenantID, campaignID uint64) (*entity.Campaign, error) {
	campaign := new(Campaign)

	if err := r.scoped(tenantID, 0).Get(ctx, campaign, &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(campaignID),
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	return ToCampaign(campaign)
}

func (r *campaignRepo) GetMany(ctx context.Context, tenantID uint64, f *CampaignFilter) ([]*entity.Campaign, *entity.Pagination, error) {
	if f == nil {
		f = new(CampaignFilter)
	}

	conditions := make([]*Condition, 0)
	if f.Name != nil {
		conditions = append(conditions, &Condition{
			Field:         "name",
			Value:         goutil.String("%" + f.GetName() + "%"),
			Op:            OpLike,
			NextLogicalOp: LogicalOpAnd,
		})
	}
	if f.Status != nil {
		conditions = append(conditions, &Condition{
			Field: "status",
			Value: f.Status,
			Op:    OpEq,
		})
	}

	res, p, err := r.scoped(tenantID, 0).GetMany(ctx, new(Campaign), &Filter{
		Conditions: conditions,
		Pagination: f.Pagination,
	})
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]*entity.Campaign, 0, len(res))
	for _, m := range res {
		campaign, err := ToCampaign(m.(*Campaign))
		if err != nil {
			return nil, nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	return campaigns, p, nil
}

func (f *CampaignFilter) GetName() string {
	if f != nil && f.Name != nil {
		return *f.Name
	}
	return ""
}

func (r *campaignRepo) Update(ctx context.Context, tenantID uint64, campaign *entity.Campaign) error {
	campaignModel, err := ToCampaignModel(campaign)
	if err != nil {
		return err
	}

	return r.scoped(tenantID, 0).Update(ctx, campaignModel)
}

func (r *campaignRepo) SetTotalRecipients(ctx context.Context, tenantID, campaignID, total uint64) error {
	return r.scoped(tenantID, 0).UpdateColumns(ctx, new(Campaign), &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(campaignID),
				Op:    OpEq,
			},
		},
	}, map[string]interface{}{
		"total_recipients": total,
		"update_time":      uint64(time.Now().Unix()),
	})
}

func (r *campaignRepo) FinishSendRun(ctx context.Context, tenantID, campaignID, sent, delivered, bounced uint64) error {
	now := uint64(time.Now().Unix())

	return r.scoped(tenantID, 0).UpdateColumns(ctx, new(Campaign), &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(campaignID),
				Op:    OpEq,
			},
		},
	}, map[string]interface{}{
		"sent_count":      gorm.Expr("sent_count + ?", sent),
		"delivered_count": gorm.Expr("delivered_count + ?", delivered),
		"bounced_count":   gorm.Expr("bounced_count + ?", bounced),
		"status":          uint32(entity.CampaignStatusSent),
		"sent_at":         now,
		"update_time":     now,
	})
}

func (r *campaignRepo) GetDueCampaigns(ctx context.Context, now uint64) ([]*entity.Campaign, error) {
	res, _, err := r.baseRepo.GetMany(ctx, new(Campaign), &Filter{
		Conditions: []*Condition{
			{
				Field:         "status",
				Value:         goutil.Uint32(uint32(entity.CampaignStatusDraft)),
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field:         "schedule",
				Value:         goutil.Uint64(0),
				Op:            OpGt,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "schedule",
				Value: goutil.Uint64(now),
				Op:    OpLte,
			},
		},
		Pagination: &entity.Pagination{
			Limit: goutil.Uint32(0), // no limit
		},
	})
	if err != nil {
		return nil, err
	}

	campaigns := make([]*entity.Campaign, 0, len(res))
	for _, m := range res {
		campaign, err := ToCampaign(m.(*Campaign))
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	return campaigns, nil
}

func ToCampaign(campaign *Campaign) (*entity.Campaign, error) {
	settings := new(entity.CampaignSettings)
	if campaign.GetSettings() != "" {
		if err := json.Unmarshal([]byte(campaign.GetSettings()), settings); err != nil {
			return nil, err
		}
	}

	return &entity.Campaign{
		ID:              campaign.ID,
		TenantID:        campaign.TenantID,
		CreatorID:       campaign.CreatorID,
		Name:            campaign.Name,
		Status:          entity.CampaignStatus(campaign.GetStatus()),
		Settings:        settings,
		Subject:         campaign.Subject,
		Content:         campaign.Content,
		TotalRecipients: campaign.TotalRecipients,
		SentCount:       campaign.SentCount,
		DeliveredCount:  campaign.DeliveredCount,
		BouncedCount:    campaign.BouncedCount,
		Schedule:        campaign.Schedule,
		SentAt:          campaign.SentAt,
		CreateTime:      campaign.CreateTime,
		UpdateTime:      campaign.UpdateTime,
	}, nil
}

func ToCampaignModel(campaign *entity.Campaign) (*Campaign, error) {
	settings := config.EmptyJson
	if campaign.Settings != nil {
		var err error
		settings, err = json.Marshal(campaign.Settings)
		if err != nil {
			return nil, err
		}
	}

	return &Campaign{
		ID:              campaign.ID,
		TenantID:        campaign.TenantID,
		CreatorID:       campaign.CreatorID,
		Name:            campaign.Name,
		Status:          goutil.Uint32(uint32(campaign.GetStatus())),
		Settings:        goutil.String(string(settings)),
		Subject:         campaign.Subject,
		Content:         campaign.Content,
		TotalRecipients: campaign.TotalRecipients,
		SentCount:       campaign.SentCount,
		DeliveredCount:  campaign.DeliveredCount,
		BouncedCount:    campaign.BouncedCount,
		Schedule:        campaign.Schedule,
		SentAt:          campaign.SentAt,
		CreateTime:      campaign.CreateTime,
		UpdateTime:      campaign.UpdateTime,
	}, nil
}
