package repo

import (
	"context"
	"time"

	"outreach/entity"
	"outreach/pkg/goutil"
)

type Recipient struct {
	ID           *uint64
	TenantID     *uint64
	CampaignID   *uint64
	ContactID    *uint64
	Email        *string
	Name         *string
	Status       *uint32
	SentAt       *uint64
	DeliveredAt  *uint64
	BouncedAt    *uint64
	ErrorMessage *string
	CreateTime   *uint64
	UpdateTime   *uint64
}

func (m *Recipient) TableName() string {
	return "recipient_tab"
}

func (m *Recipient) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

func (m *Recipient) GetEmail() string {
	if m != nil && m.Email != nil {
		return *m.Email
	}
	return ""
}

func (m *Recipient) GetStatus() uint32 {
	if m != nil && m.Status != nil {
		return *m.Status
	}
	return 0
}

// recipientConflictColumns matches the unique key on recipient_tab.
var recipientConflictColumns = []string{"campaign_id", "email"}

type RecipientRepo interface {
	// UpsertMany inserts recipient snapshots, leaving rows that
	// already exist for (campaign_id, email) untouched. Safe to call
	// repeatedly: it never regresses a recipient's status.
	UpsertMany(ctx context.Context, tenantID uint64, recipients []*entity.Recipient) error
	CountByCampaignID(ctx context.Context, tenantID, campaignID uint64) (uint64, error)
	// GetPendingByCampaignID returns up to limit pending rows in
	// stable id order.
	GetPendingByCampaignID(ctx context.Context, tenantID, campaignID uint64, limit uint32) ([]*entity.Recipient, error)
	MarkSent(ctx context.Context, tenantID, recipientID uint64) error
	MarkBounced(ctx context.Context, tenantID, recipientID uint64, errMsg string) error
}

type recipientRepo struct {
	baseRepo BaseRepo
}

func NewRecipientRepo(_ context.Context, baseRepo BaseRepo) RecipientRepo {
	return &recipientRepo{baseRepo: baseRepo}
}

func (r *recipientRepo) scoped(tenantID uint64) BaseRepo {
	return ScopeToTenant(r.baseRepo, tenantID, 0)
}

func (r *recipientRepo) UpsertMany(ctx context.Context, tenantID uint64, recipients []*entity.Recipient) error {
	if len(recipients) == 0 {
		return nil
	}

	models := make([]*Recipient, 0, len(recipients))
	for _, recipient := range recipients {
		models = append(models, ToRecipientModel(recipient))
	}

	return r.scoped(tenantID).CreateIgnoreConflicts(ctx, new(Recipient), models, recipientConflictColumns)
}

func (r *recipientRepo) CountByCampaignID(ctx context.Context, tenantID, campaignID uint64) (uint64, error) {
	return r.scoped(tenantID).Count(ctx, new(Recipient), &Filter{
		Conditions: []*Condition{
			{
				Field: "campaign_id",
				Value: goutil.Uint64(campaignID),
				Op:    OpEq,
			},
		},
	})
}

func (r *recipientRepo) GetPendingByCampaignID(ctx context.Context, tenantID, campaignID uint64, limit uint32) ([]*entity.Recipient, error) {
	res, _, err := r.scoped(tenantID).GetMany(ctx, new(Recipient), &Filter{
		Conditions: []*Condition{
			{
				Field:         "campaign_id",
				Value:         goutil.Uint64(campaignID),
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "status",
				Value: goutil.Uint32(uint32(entity.RecipientStatusPending)),
				Op:    OpEq,
			},
		},
		Pagination: &entity.Pagination{
			Page:  goutil.Uint32(1),
			Limit: goutil.Uint32(limit),
		},
		OrderBy: "id ASC",
	})
	if err != nil {
		return nil, err
	}

	recipients := make([]*entity.Recipient, 0, len(res))
	for _, m := range res {
		recipients = append(recipients, ToRecipient(m.(*Recipient)))
	}

	return recipients, nil
}

func (r *recipientRepo) MarkSent(ctx context.Context, tenantID, recipientID uint64) error {
	now := uint64(time.Now().Unix())

	return r.scoped(tenantID).UpdateColumns(ctx, new(Recipient), r.byIDFilter(recipientID), map[string]interface{}{
		"status":        uint32(entity.RecipientStatusSent),
		"sent_at":       now,
		"delivered_at":  now,
		"error_message": nil,
		"update_time":   now,
	})
}

func (r *recipientRepo) MarkBounced(ctx context.Context, tenantID, recipientID uint64, errMsg string) error {
	now := uint64(time.Now().Unix())

	return r.scoped(tenantID).UpdateColumns(ctx, new(Recipient), r.byIDFilter(recipientID), map[string]interface{}{
		"status":        uint32(entity.RecipientStatusBounced),
		"bounced_at":    now,
		"error_message": errMsg,
		"update_time":   now,
	})
}

func (r *recipientRepo) byIDFilter(recipientID uint64) *Filter {
	return &Filter{
		Conditions: []*Condition{
			{
				Field: "id",
				Value: goutil.Uint64(recipientID),
				Op:    OpEq,
			},
		},
	}
}

func ToRecipient(recipient *Recipient) *entity.Recipient {
	return &entity.Recipient{
		ID:           recipient.ID,
		TenantID:     recipient.TenantID,
		CampaignID:   recipient.CampaignID,
		ContactID:    recipient.ContactID,
		Email:        recipient.Email,
		Name:         recipient.Name,
		Status:       entity.RecipientStatus(recipient.GetStatus()),
		SentAt:       recipient.SentAt,
		DeliveredAt:  recipient.DeliveredAt,
		BouncedAt:    recipient.BouncedAt,
		ErrorMessage: recipient.ErrorMessage,
		CreateTime:   recipient.CreateTime,
		UpdateTime:   recipient.UpdateTime,
	}
}

func ToRecipientModel(recipient *entity.Recipient) *Recipient {
	return &Recipient{
		ID:           recipient.ID,
		TenantID:     recipient.TenantID,
		CampaignID:   recipient.CampaignID,
		ContactID:    recipient.ContactID,
		Email:        recipient.Email,
		Name:         recipient.Name,
		Status:       goutil.Uint32(uint32(recipient.GetStatus())),
		SentAt:       recipient.SentAt,
		DeliveredAt:  recipient.DeliveredAt,
		BouncedAt:    recipient.BouncedAt,
		ErrorMessage: recipient.ErrorMessage,
		CreateTime:   recipient.CreateTime,
		UpdateTime:   recipient.UpdateTime,
	}
}
