package repo

import (
	"context"
	"encoding/json"
	"errors"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/errutil"
	"outreach/pkg/goutil"

	"gorm.io/gorm"
)

var (
	ErrAutomationNotFound = errutil.NotFoundError(errors.New("automation not found"))
)

type Automation struct {
	ID           *uint64
	TenantID     *uint64
	CampaignID   *uint64
	TriggerEvent *string
	DelayMinutes *uint64
	Action       *string
	Metadata     *string
	Status       *uint32
	CreateTime   *uint64
	UpdateTime   *uint64
}

func (m *Automation) TableName() string {
	return "automation_tab"
}

func (m *Automation) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Automation) GetStatus() uint32 {
	if m != nil && m.Status != nil {
		return *m.Status
	}
	return 0
}

func (m *Automation) GetMetadata() string {
	if m != nil && m.Metadata != nil {
		return *m.Metadata
	}
	return ""
}

type AutomationRepo interface {
	Create(ctx context.Context, tenantID uint64, automation *entity.Automation) (uint64, error)
	GetByID(ctx context.Context, tenantID, automationID uint64) (*entity.Automation, error)
	GetByTriggerEvent(ctx context.Context, tenantID uint64, triggerEvent string) ([]*entity.Automation, error)
}

type automationRepo struct {
	baseRepo BaseRepo
}

func NewAutomationRepo(_ context.Context, baseRepo BaseRepo) AutomationRepo {
	return &automationRepo{baseRepo: baseRepo}
}

func (r *automationRepo) scoped(tenantID uint64) BaseRepo {
	return ScopeToTenant(r.baseRepo, tenantID, 0)
}

func (r *automationRepo) Create(ctx context.Context, tenantID uint64, automation *entity.Automation) (uint64, error) {
	automationModel, err := ToAutomationModel(automation)
	if err != nil {
		return 0, err
	}

	if err := r.scoped(tenantID).Create(ctx, automationModel); err != nil {
		return 0, err
	}

	automation.ID = automationModel.ID
	automation.TenantID = automationModel.TenantID

	return automationModel.GetID(), nil
}

func (r *automationRepo) GetByID(ctx context.Context, tenantID, automationID uint64) (*entity.Automation, error) {
	automation := new(Automation)

	if err := r.scoped(tenantID).Get(ctx, automation, &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(automationID),
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAutomationNotFound
		}
		return nil, err
	}

	return ToAutomation(automation)
}

func (r *automationRepo) GetByTriggerEvent(ctx context.Context, tenantID uint64, triggerEvent string) ([]*entity.Automation, error) {
	res, _, err := r.scoped(tenantID).GetMany(ctx, new(Automation), &Filter{
		Conditions: []*Condition{
			{
				Field:         "trigger_event",
				Value:         goutil.String(triggerEvent),
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "status",
				Value: goutil.Uint32(uint32(entity.AutomationStatusNormal)),
				Op:    OpEq,
			},
		},
		Pagination: &entity.Pagination{
			Limit: goutil.Uint32(0), // no limit
		},
	})
	if err != nil {
		return nil, err
	}

	automations := make([]*entity.Automation, 0, len(res))
	for _, m := range res {
		automation, err := ToAutomation(m.(*Automation))
		if err != nil {
			return nil, err
		}
		automations = append(automations, automation)
	}

	return automations, nil
}

func ToAutomation(automation *Automation) (*entity.Automation, error) {
	metadata := make(entity.AutomationMetadata)
	if automation.GetMetadata() != "" {
		if err := json.Unmarshal([]byte(automation.GetMetadata()), &metadata); err != nil {
			return nil, err
		}
	}

	return &entity.Automation{
		ID:           automation.ID,
		TenantID:     automation.TenantID,
		CampaignID:   automation.CampaignID,
		TriggerEvent: automation.TriggerEvent,
		DelayMinutes: automation.DelayMinutes,
		Action:       automation.Action,
		Metadata:     metadata,
		Status:       entity.AutomationStatus(automation.GetStatus()),
		CreateTime:   automation.CreateTime,
		UpdateTime:   automation.UpdateTime,
	}, nil
}

func ToAutomationModel(automation *entity.Automation) (*Automation, error) {
	metadata := string(config.EmptyJson)
	if automation.Metadata != nil {
		var err error
		metadata, err = automation.Metadata.ToString()
		if err != nil {
			return nil, err
		}
	}

	return &Automation{
		ID:           automation.ID,
		TenantID:     automation.TenantID,
		CampaignID:   automation.CampaignID,
		TriggerEvent: automation.TriggerEvent,
		DelayMinutes: automation.DelayMinutes,
		Action:       automation.Action,
		Metadata:     goutil.String(metadata),
		Status:       goutil.Uint32(uint32(automation.GetStatus())),
		CreateTime:   automation.CreateTime,
		UpdateTime:   automation.UpdateTime,
	}, nil
}
