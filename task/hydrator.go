package task

import (
	"context"
	"errors"
	"time"

	"outreach/config"
	"outreach/entity"
	"outreach/pkg/goutil"
	"outreach/pkg/mq"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

// Hydrator resolves a running campaign's targeting rule into concrete
// recipient rows. Hydration is idempotent: re-running it never creates
// duplicate rows and never touches rows that already moved past
// pending.
type Hydrator interface {
	Hydrate(ctx context.Context, msg *mq.Message) error
}

type hydrator struct {
	campaignRepo  repo.CampaignRepo
	recipientRepo repo.RecipientRepo
	contactRepo   repo.ContactRepo
	segmentRepo   repo.SegmentRepo
	msgSender     mq.MessageSender
}

func NewHydrator(campaignRepo repo.CampaignRepo, recipientRepo repo.RecipientRepo,
	contactRepo repo.ContactRepo, segmentRepo repo.SegmentRepo, msgSender mq.MessageSender) Hydrator {
	return &hydrator{
		campaignRepo:  campaignRepo,
		recipientRepo: recipientRepo,
		contactRepo:   contactRepo,
		segmentRepo:   segmentRepo,
		msgSender:     msgSender,
	}
}

func (h *hydrator) Hydrate(ctx context.Context, msg *mq.Message) error {
	body := new(mq.HydrateCampaign)
	if err := msg.ParseBody(body); err != nil {
		log.Ctx(ctx).Error().Msgf("parse hydrate_campaign body err: %v", err)
		return err
	}

	var (
		tenantID   = body.GetTenantID()
		campaignID = body.GetCampaignID()
	)

	campaign, err := h.campaignRepo.GetByID(ctx, tenantID, campaignID)
	if err != nil {
		if errors.Is(err, repo.ErrCampaignNotFound) {
			log.Ctx(ctx).Warn().Msgf("campaign not found, skip hydration, campaign_id: %d", campaignID)
			return nil
		}
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	if campaign.IsTerminal() {
		log.Ctx(ctx).Info().Msgf("campaign already %v, skip hydration, campaign_id: %d",
			campaign.GetStatus(), campaignID)
		return nil
	}

	if campaign.IsPaused() {
		log.Ctx(ctx).Info().Msgf("campaign paused, recheck in %ds, campaign_id: %d",
			config.PausedRecheckSeconds, campaignID)
		return h.msgSender.SendMessageAfter(msg, config.PausedRecheckSeconds*time.Second)
	}

	resolved, err := h.upsertRecipients(ctx, campaign)
	if err != nil {
		return err
	}
	if resolved == 0 {
		log.Ctx(ctx).Warn().Msgf("targeting rule resolved no recipients, skip, campaign_id: %d", campaignID)
		return nil
	}

	total, err := h.recipientRepo.CountByCampaignID(ctx, tenantID, campaignID)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("count recipients err: %v", err)
		return err
	}

	if err := h.campaignRepo.SetTotalRecipients(ctx, tenantID, campaignID, total); err != nil {
		log.Ctx(ctx).Error().Msgf("set total recipients err: %v", err)
		return err
	}

	log.Ctx(ctx).Info().Msgf("campaign hydrated, campaign_id: %d, total_recipients: %d", campaignID, total)

	return h.msgSender.SendMessage(&mq.Message{
		Payload: mq.PayloadSendCampaign,
		Key:     msg.Key,
		Body: &mq.SendCampaign{
			TenantID:   goutil.Uint64(tenantID),
			CampaignID: goutil.Uint64(campaignID),
		},
	})
}

// upsertRecipients reports how many recipients the targeting rule
// resolved. Zero means the caller must terminate without touching the
// campaign: an empty or unknown audience is not a completed send.
func (h *hydrator) upsertRecipients(ctx context.Context, campaign *entity.Campaign) (int, error) {
	var (
		tenantID = campaign.GetTenantID()
		settings = campaign.GetSettings()
	)

	switch settings.GetRecipientMode() {
	case entity.RecipientModeSegment:
		return h.hydrateFromSegment(ctx, campaign, settings.GetSegmentID())
	case entity.RecipientModeManual, entity.RecipientModeStatic:
		return h.hydrateFromContactIDs(ctx, campaign, settings.GetRecipientContactIDs())
	default:
		log.Ctx(ctx).Warn().Msgf("unknown recipient mode %q, tenant_id: %d, campaign_id: %d",
			settings.GetRecipientMode(), tenantID, campaign.GetID())
		return 0, nil
	}
}

func (h *hydrator) hydrateFromSegment(ctx context.Context, campaign *entity.Campaign, segmentID uint64) (int, error) {
	var (
		tenantID = campaign.GetTenantID()
		page     = uint32(1)
		resolved int
	)
	for {
		contactIDs, pagination, err := h.segmentRepo.GetContactIDs(ctx, tenantID, segmentID, &entity.Pagination{
			Page:  goutil.Uint32(page),
			Limit: goutil.Uint32(config.HydrationPageSize),
		})
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get segment contact ids err: %v", err)
			return resolved, err
		}

		n, err := h.hydrateFromContactIDs(ctx, campaign, contactIDs)
		if err != nil {
			return resolved, err
		}
		resolved += n

		if !pagination.GetHasNext() {
			return resolved, nil
		}
		page++
	}
}

func (h *hydrator) hydrateFromContactIDs(ctx context.Context, campaign *entity.Campaign, contactIDs []uint64) (int, error) {
	var (
		tenantID = campaign.GetTenantID()
		resolved int
	)

	for start := 0; start < len(contactIDs); start += config.HydrationPageSize {
		end := start + config.HydrationPageSize
		if end > len(contactIDs) {
			end = len(contactIDs)
		}

		contacts, _, err := h.contactRepo.GetManyByIDs(ctx, tenantID, contactIDs[start:end], &entity.Pagination{
			Limit: goutil.Uint32(config.HydrationPageSize),
		})
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get contacts err: %v", err)
			return resolved, err
		}

		if len(contacts) == 0 {
			continue
		}

		recipients := make([]*entity.Recipient, 0, len(contacts))
		for _, contact := range contacts {
			recipients = append(recipients, newRecipient(campaign, contact))
		}

		if err := h.recipientRepo.UpsertMany(ctx, tenantID, recipients); err != nil {
			log.Ctx(ctx).Error().Msgf("upsert recipients err: %v", err)
			return resolved, err
		}
		resolved += len(recipients)
	}

	return resolved, nil
}

// newRecipient snapshots the contact's email and name at hydration
// time. Later contact edits do not reach rows that already exist.
func newRecipient(campaign *entity.Campaign, contact *entity.Contact) *entity.Recipient {
	now := uint64(time.Now().Unix())
	return &entity.Recipient{
		TenantID:   campaign.TenantID,
		CampaignID: campaign.ID,
		ContactID:  contact.ID,
		Email:      contact.Email,
		Name:       contact.FullName(),
		Status:     entity.RecipientStatusPending,
		CreateTime: goutil.Uint64(now),
		UpdateTime: goutil.Uint64(now),
	}
}
