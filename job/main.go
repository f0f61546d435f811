package main

import (
	"context"
	"fmt"
	"os"

	"outreach/config"
	"outreach/job/run_due_campaigns"
	"outreach/pkg/logutil"
	"outreach/pkg/mq"
	"outreach/pkg/service"
	"outreach/repo"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		opt = config.NewOptions()
		ctx = logutil.InitZeroLog(context.Background(), "DEBUG")
	)

	cfg := config.NewConfig()
	if err := cfg.Load(ctx, opt.ConfigPath); err != nil {
		log.Ctx(ctx).Error().Msgf("load config failed: %v", err)
		os.Exit(1)
	}

	baseRepo, err := repo.NewBaseRepo(ctx, cfg.MetadataDB)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init base repo failed, err: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := baseRepo.Close(ctx); err != nil {
			log.Ctx(ctx).Error().Msgf("close base repo failed, err: %v", err)
		}
	}()

	producer, err := mq.NewProducer(ctx, cfg.TaskQueue.ToProducerConfig())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("init producer failed, err: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Ctx(ctx).Error().Msgf("close producer failed, err: %v", err)
		}
	}()

	campaignRepo := repo.NewCampaignRepo(ctx, baseRepo)

	jobs := map[string]service.Job{
		"run-due-campaigns": run_due_campaigns.New(campaignRepo, producer),
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go <job_name>")
		os.Exit(1)
	}

	jobName := os.Args[1]
	job, exists := jobs[jobName]
	if !exists {
		log.Ctx(ctx).Error().Msgf("job %s not found", jobName)
		os.Exit(1)
	}

	if err := job.Init(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("init job err: %v", err)
		os.Exit(1)
	}

	if err := job.Run(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("run job err: %v", err)
		os.Exit(1)
	}

	if err := job.CleanUp(ctx); err != nil {
		log.Ctx(ctx).Error().Msgf("cleanup job err: %v", err)
		os.Exit(1)
	}

	log.Ctx(ctx).Info().Msg("job executed successfully")
	os.Exit(0)
}
