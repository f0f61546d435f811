package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"outreach/config"
	"outreach/dep"
	"outreach/entity"
	"outreach/pkg/mq"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

const defaultRecipientName = "there"

// Sender drains a campaign's pending recipients and delivers one email
// per recipient. Each recipient's outcome is recorded individually, so
// a crash mid-run resumes from the remaining pending rows without
// re-sending what was already marked.
type Sender interface {
	Send(ctx context.Context, msg *mq.Message) error
}

type sender struct {
	campaignRepo  repo.CampaignRepo
	recipientRepo repo.RecipientRepo
	emailService  dep.EmailService
	msgSender     mq.MessageSender
	senderEmail   string
	senderName    string
}

func NewSender(campaignRepo repo.CampaignRepo, recipientRepo repo.RecipientRepo,
	emailService dep.EmailService, msgSender mq.MessageSender, senderEmail, senderName string) Sender {
	return &sender{
		campaignRepo:  campaignRepo,
		recipientRepo: recipientRepo,
		emailService:  emailService,
		msgSender:     msgSender,
		senderEmail:   senderEmail,
		senderName:    senderName,
	}
}

func (s *sender) Send(ctx context.Context, msg *mq.Message) error {
	body := new(mq.SendCampaign)
	if err := msg.ParseBody(body); err != nil {
		log.Ctx(ctx).Error().Msgf("parse send_campaign body err: %v", err)
		return err
	}

	var (
		tenantID   = body.GetTenantID()
		campaignID = body.GetCampaignID()
	)

	campaign, err := s.campaignRepo.GetByID(ctx, tenantID, campaignID)
	if err != nil {
		if errors.Is(err, repo.ErrCampaignNotFound) {
			log.Ctx(ctx).Warn().Msgf("campaign not found, skip send, campaign_id: %d", campaignID)
			return nil
		}
		log.Ctx(ctx).Error().Msgf("get campaign err: %v", err)
		return err
	}

	// no terminal gate here: automations keep upserting recipients
	// after a campaign's first send run, and those rows must still
	// drain
	if campaign.IsPaused() {
		log.Ctx(ctx).Info().Msgf("campaign paused, recheck in %ds, campaign_id: %d",
			config.PausedRecheckSeconds, campaignID)
		return s.msgSender.SendMessageAfter(msg, config.PausedRecheckSeconds*time.Second)
	}

	var sent, delivered, bounced uint64
	for {
		recipients, err := s.recipientRepo.GetPendingByCampaignID(ctx, tenantID, campaignID, config.SendChunkSize)
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get pending recipients err: %v", err)
			return err
		}

		if len(recipients) == 0 {
			break
		}

		for _, recipient := range recipients {
			if err := s.sendOne(ctx, campaign, recipient); err != nil {
				if markErr := s.recipientRepo.MarkBounced(ctx, tenantID, recipient.GetID(), err.Error()); markErr != nil {
					log.Ctx(ctx).Error().Msgf("mark recipient bounced err: %v, recipient_id: %d",
						markErr, recipient.GetID())
					return markErr
				}
				bounced++
				continue
			}

			if err := s.recipientRepo.MarkSent(ctx, tenantID, recipient.GetID()); err != nil {
				log.Ctx(ctx).Error().Msgf("mark recipient sent err: %v, recipient_id: %d",
					err, recipient.GetID())
				return err
			}
			sent++
			delivered++
		}
	}

	// the run is recorded and the campaign flips to sent even when
	// nothing was pending
	if err := s.campaignRepo.FinishSendRun(ctx, tenantID, campaignID, sent, delivered, bounced); err != nil {
		log.Ctx(ctx).Error().Msgf("finish send run err: %v", err)
		return err
	}

	log.Ctx(ctx).Info().Msgf("campaign sent, campaign_id: %d, sent: %d, bounced: %d",
		campaignID, sent, bounced)

	return nil
}

func (s *sender) sendOne(ctx context.Context, campaign *entity.Campaign, recipient *entity.Recipient) error {
	return s.emailService.SendEmail(ctx, &dep.SendSmtpEmail{
		CampaignID: campaign.GetID(),
		From: &dep.Sender{
			Email: s.senderEmail,
			Name:  s.senderName,
		},
		To: &dep.Receiver{
			Email: recipient.GetEmail(),
			Name:  recipient.GetName(),
		},
		Subject:     personalize(campaign.GetSubject(), recipient.GetName()),
		HtmlContent: personalize(campaign.GetContent(), recipient.GetName()),
	})
}

func personalize(content, name string) string {
	if name == "" {
		name = defaultRecipientName
	}
	return strings.ReplaceAll(content, "{{name}}", name)
}
