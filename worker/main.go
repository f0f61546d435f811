package main

import (
	"context"
	"os"

	"outreach/config"
	"outreach/dep"
	"outreach/pkg/logutil"
	"outreach/pkg/mq"
	"outreach/pkg/service"
	"outreach/repo"
	"outreach/task"

	"github.com/rs/zerolog/log"
)

// worker consumes the task queue and runs the delivery pipeline:
// hydration, sending, and automation dispatch.
type worker struct {
	ctx context.Context
	opt *config.Option
	cfg *config.Config

	baseRepo     repo.BaseRepo
	producer     *mq.Producer
	emailService dep.EmailService
	consumers    []*mq.Consumer
}

func main() {
	w := new(worker)
	if err := service.Run(w); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

func (w *worker) Init() error {
	opt := config.NewOptions()

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		opt.LogLevel = logLevel
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		opt.ConfigPath = configPath
	}

	w.opt = opt

	return nil
}

func (w *worker) Start() error {
	var err error

	w.ctx = logutil.InitZeroLog(context.Background(), w.opt.LogLevel)

	w.cfg = config.NewConfig()
	if err = w.cfg.Load(w.ctx, w.opt.ConfigPath); err != nil {
		log.Ctx(w.ctx).Error().Msgf("load config failed, err: %v", err)
		return err
	}

	// ===== init repos ===== //

	w.baseRepo, err = repo.NewBaseRepo(w.ctx, w.cfg.MetadataDB)
	if err != nil {
		log.Ctx(w.ctx).Error().Msgf("init base repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && w.baseRepo != nil {
			if err := w.baseRepo.Close(w.ctx); err != nil {
				log.Ctx(w.ctx).Error().Msgf("close base repo failed, err: %v", err)
				return
			}
		}
	}()

	var (
		campaignRepo   = repo.NewCampaignRepo(w.ctx, w.baseRepo)
		recipientRepo  = repo.NewRecipientRepo(w.ctx, w.baseRepo)
		contactRepo    = repo.NewContactRepo(w.ctx, w.baseRepo)
		segmentRepo    = repo.NewSegmentRepo(w.ctx, w.baseRepo)
		automationRepo = repo.NewAutomationRepo(w.ctx, w.baseRepo)
	)

	// ===== init deps ===== //

	w.emailService, err = dep.NewEmailService(w.ctx, w.cfg.Brevo)
	if err != nil {
		log.Ctx(w.ctx).Error().Msgf("init email service failed, err: %v", err)
		return err
	}

	w.producer, err = mq.NewProducer(w.ctx, w.cfg.TaskQueue.ToProducerConfig())
	if err != nil {
		log.Ctx(w.ctx).Error().Msgf("init producer failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && w.producer != nil {
			if err := w.producer.Close(); err != nil {
				log.Ctx(w.ctx).Error().Msgf("close producer failed, err: %v", err)
				return
			}
		}
	}()

	// ===== register task handlers ===== //

	var (
		hydrator   = task.NewHydrator(campaignRepo, recipientRepo, contactRepo, segmentRepo, w.producer)
		sender     = task.NewSender(campaignRepo, recipientRepo, w.emailService, w.producer, w.cfg.InternalSender, w.cfg.SenderName)
		dispatcher = task.NewDispatcher(automationRepo, campaignRepo, contactRepo, segmentRepo, recipientRepo, w.producer)
	)

	mq.RegisterHandler(mq.PayloadHydrateCampaign, hydrator.Hydrate)
	mq.RegisterHandler(mq.PayloadSendCampaign, sender.Send)
	mq.RegisterHandler(mq.PayloadRunAutomation, dispatcher.Dispatch)

	// ===== start consumers ===== //

	for payload, topic := range w.cfg.TaskQueue.Topics {
		consumer, err := mq.NewConsumer(w.ctx, w.cfg.TaskQueue.ToConsumerConfig(topic))
		if err != nil {
			log.Ctx(w.ctx).Error().Msgf("init consumer failed, err: %v, payload: %d", err, payload)
			return err
		}
		w.consumers = append(w.consumers, consumer)
	}

	return nil
}

func (w *worker) Stop() error {
	for _, consumer := range w.consumers {
		if err := consumer.Close(); err != nil {
			log.Ctx(w.ctx).Error().Msgf("close consumer failed, err: %v", err)
			return err
		}
	}

	if w.producer != nil {
		if err := w.producer.Close(); err != nil {
			log.Ctx(w.ctx).Error().Msgf("close producer failed, err: %v", err)
			return err
		}
	}

	if w.emailService != nil {
		if err := w.emailService.Close(w.ctx); err != nil {
			log.Ctx(w.ctx).Error().Msgf("close email service failed, err: %v", err)
			return err
		}
	}

	if w.baseRepo != nil {
		if err := w.baseRepo.Close(w.ctx); err != nil {
			log.Ctx(w.ctx).Error().Msgf("close base repo failed, err: %v", err)
			return err
		}
	}

	return nil
}
