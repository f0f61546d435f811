package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outreach/entity"
	"outreach/pkg/goutil"
	"outreach/pkg/mq"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

// Dispatcher reacts to a business event bound to one contact and
// executes the automation's action. A missing automation, campaign or
// contact is a reconciliation gap, not a failure: the task terminates
// cleanly so the queue does not retry what cannot succeed.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *mq.Message) error
}

type dispatcher struct {
	automationRepo repo.AutomationRepo
	campaignRepo   repo.CampaignRepo
	contactRepo    repo.ContactRepo
	segmentRepo    repo.SegmentRepo
	recipientRepo  repo.RecipientRepo
	msgSender      mq.MessageSender
}

func NewDispatcher(automationRepo repo.AutomationRepo, campaignRepo repo.CampaignRepo,
	contactRepo repo.ContactRepo, segmentRepo repo.SegmentRepo,
	recipientRepo repo.RecipientRepo, msgSender mq.MessageSender) Dispatcher {
	return &dispatcher{
		automationRepo: automationRepo,
		campaignRepo:   campaignRepo,
		contactRepo:    contactRepo,
		segmentRepo:    segmentRepo,
		recipientRepo:  recipientRepo,
		msgSender:      msgSender,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, msg *mq.Message) error {
	body := new(mq.RunAutomation)
	if err := msg.ParseBody(body); err != nil {
		log.Ctx(ctx).Error().Msgf("parse run_automation body err: %v", err)
		return err
	}

	tenantID := body.GetTenantID()

	automation, err := d.automationRepo.GetByID(ctx, tenantID, body.GetAutomationID())
	if err != nil {
		if errors.Is(err, repo.ErrAutomationNotFound) {
			log.Ctx(ctx).Warn().Msgf("automation not found, skip, automation_id: %d", body.GetAutomationID())
			return nil
		}
		log.Ctx(ctx).Error().Msgf("get automation err: %v", err)
		return err
	}

	campaign, err := d.campaignRepo.GetByID(ctx, tenantID, automation.GetCampaignID())
	if err != nil {
		if errors.Is(err, repo.ErrCampaignNotFound) {
			log.Ctx(ctx).Warn().Msgf("automation campaign not found, skip, campaign_id: %d",
				automation.GetCampaignID())
			return nil
		}
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	// the contact is loaded without tenant scoping so a cross-tenant
	// reference surfaces as a mismatch below, not as a silent not-found
	contact, err := d.contactRepo.GetAnyByID(ctx, body.GetContactID())
	if err != nil {
		if errors.Is(err, repo.ErrContactNotFound) {
			log.Ctx(ctx).Warn().Msgf("contact not found, skip, contact_id: %d", body.GetContactID())
			return nil
		}
		log.Ctx(ctx).Error().Msgf("get contact err: %v", err)
		return err
	}

	if automation.GetTenantID() != campaign.GetTenantID() ||
		automation.GetTenantID() != contact.GetTenantID() {
		log.Ctx(ctx).Error().Msgf(
			"tenant mismatch, no action taken, automation_tenant: %d, campaign_tenant: %d, contact_tenant: %d",
			automation.GetTenantID(), campaign.GetTenantID(), contact.GetTenantID())
		return nil
	}

	switch automation.GetAction() {
	case entity.AutomationActionSendEmail:
		return d.sendEmail(ctx, automation, campaign, contact)
	case entity.AutomationActionAddToSegment:
		return d.addToSegment(ctx, automation, contact)
	case entity.AutomationActionUpdateContact:
		return d.updateContact(ctx, automation, contact)
	default:
		log.Ctx(ctx).Warn().Msgf("unknown automation action %q, skip, automation_id: %d",
			automation.GetAction(), automation.GetID())
		return nil
	}
}

// sendEmail upserts a single recipient row for the contact and routes
// it through the campaign's normal send path after the automation's
// delay. The upsert keeps it safe when the contact was already a
// recipient of the campaign.
func (d *dispatcher) sendEmail(ctx context.Context, automation *entity.Automation,
	campaign *entity.Campaign, contact *entity.Contact) error {
	tenantID := automation.GetTenantID()

	if contact.GetEmail() == "" {
		log.Ctx(ctx).Warn().Msgf("contact has no email, skip send_email, contact_id: %d", contact.GetID())
		return nil
	}

	if err := d.recipientRepo.UpsertMany(ctx, tenantID, []*entity.Recipient{
		newRecipient(campaign, contact),
	}); err != nil {
		log.Ctx(ctx).Error().Msgf("upsert recipient err: %v", err)
		return err
	}

	total, err := d.recipientRepo.CountByCampaignID(ctx, tenantID, campaign.GetID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("count recipients err: %v", err)
		return err
	}

	if err := d.campaignRepo.SetTotalRecipients(ctx, tenantID, campaign.GetID(), total); err != nil {
		log.Ctx(ctx).Error().Msgf("set total recipients err: %v", err)
		return err
	}

	delay := time.Duration(automation.GetDelayMinutes()) * time.Minute
	return d.msgSender.SendMessageAfter(&mq.Message{
		Payload: mq.PayloadSendCampaign,
		Key:     fmt.Sprint(campaign.GetID()),
		Body: &mq.SendCampaign{
			TenantID:   goutil.Uint64(tenantID),
			CampaignID: goutil.Uint64(campaign.GetID()),
		},
	}, delay)
}

func (d *dispatcher) addToSegment(ctx context.Context, automation *entity.Automation,
	contact *entity.Contact) error {
	segmentID, ok := automation.GetMetadata().GetSegmentID()
	if !ok {
		log.Ctx(ctx).Warn().Msgf("automation has no segment_id, skip add_to_segment, automation_id: %d",
			automation.GetID())
		return nil
	}

	tenantID := automation.GetTenantID()

	if _, err := d.segmentRepo.GetByID(ctx, tenantID, segmentID); err != nil {
		if errors.Is(err, repo.ErrSegmentNotFound) {
			log.Ctx(ctx).Warn().Msgf("segment not found, skip add_to_segment, segment_id: %d", segmentID)
			return nil
		}
		log.Ctx(ctx).Error().Msgf("get segment err: %v", err)
		return err
	}

	if err := d.segmentRepo.AddContact(ctx, tenantID, segmentID, contact.GetID()); err != nil {
		log.Ctx(ctx).Error().Msgf("add contact to segment err: %v", err)
		return err
	}

	return nil
}

func (d *dispatcher) updateContact(ctx context.Context, automation *entity.Automation,
	contact *entity.Contact) error {
	updates, ok := automation.GetMetadata().GetContactUpdates()
	if !ok {
		log.Ctx(ctx).Warn().Msgf("automation has no contact_updates, skip update_contact, automation_id: %d",
			automation.GetID())
		return nil
	}

	if err := d.contactRepo.UpdateFields(ctx, automation.GetTenantID(), contact.GetID(), updates); err != nil {
		log.Ctx(ctx).Error().Msgf("update contact err: %v", err)
		return err
	}

	return nil
}
