package run_due_campaigns

import (
	"context"
	"fmt"
	"time"

	"outreach/entity"
	"outreach/pkg/goutil"
	"outreach/pkg/mq"
	"outreach/pkg/service"
	"outreach/repo"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RunDueCampaigns starts every scheduled campaign whose schedule has
// come due: it flips the campaign to running and enqueues its
// hydration. Meant to run periodically (e.g. a cron every minute).
type RunDueCampaigns struct {
	campaignRepo repo.CampaignRepo
	msgSender    mq.MessageSender
}

func New(campaignRepo repo.CampaignRepo, msgSender mq.MessageSender) service.Job {
	return &RunDueCampaigns{
		campaignRepo: campaignRepo,
		msgSender:    msgSender,
	}
}

func (h *RunDueCampaigns) Init(_ context.Context) error {
	return nil
}

func (h *RunDueCampaigns) Run(ctx context.Context) error {
	var (
		g   = new(errgroup.Group)
		ch  = make(chan struct{}, 10)
		now = uint64(time.Now().Unix())
	)

	campaigns, err := h.campaignRepo.GetDueCampaigns(ctx, now)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get due campaigns failed: %v", err)
		return err
	}

	log.Ctx(ctx).Info().Msgf("number of due campaigns: %d", len(campaigns))

	for _, campaign := range campaigns {
		ch <- struct{}{}

		campaign := campaign
		g.Go(func() error {
			defer func() {
				<-ch
			}()

			tenantID := campaign.GetTenantID()

			campaign.Update(&entity.Campaign{
				Status: entity.CampaignStatusRunning,
			})
			if err := h.campaignRepo.Update(ctx, tenantID, campaign); err != nil {
				log.Ctx(ctx).Error().Msgf("[campaign ID %d] update campaign failed: %v", campaign.GetID(), err)
				return err
			}

			if err := h.msgSender.SendMessage(&mq.Message{
				Payload: mq.PayloadHydrateCampaign,
				Key:     fmt.Sprint(campaign.GetID()),
				Body: &mq.HydrateCampaign{
					TenantID:   goutil.Uint64(tenantID),
					CampaignID: goutil.Uint64(campaign.GetID()),
				},
			}); err != nil {
				log.Ctx(ctx).Error().Msgf("[campaign ID %d] send hydrate message failed: %v", campaign.GetID(), err)
				return err
			}

			return nil
		})
	}

	return g.Wait()
}

func (h *RunDueCampaigns) CleanUp(_ context.Context) error {
	return nil
}
