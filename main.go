package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"outreach/config"
	"outreach/handler"
	"outreach/pkg/logutil"
	"outreach/pkg/mq"
	"outreach/pkg/router"
	"outreach/pkg/service"
	"outreach/repo"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type server struct {
	ctx context.Context
	opt *config.Option
	cfg *config.Config

	baseRepo  repo.BaseRepo
	baseCache repo.BaseCache
	producer  *mq.Producer

	tenantRepo     repo.TenantRepo
	userRepo       repo.UserRepo
	campaignRepo   repo.CampaignRepo
	segmentRepo    repo.SegmentRepo
	automationRepo repo.AutomationRepo

	// api handlers
	tenantHandler     handler.TenantHandler
	userHandler       handler.UserHandler
	campaignHandler   handler.CampaignHandler
	automationHandler handler.AutomationHandler
}

func main() {
	s := new(server)
	if err := service.Run(s); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

func (s *server) Init() error {
	opt := config.NewOptions()

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		opt.LogLevel = logLevel
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		opt.ConfigPath = configPath
	}

	if serverPort := os.Getenv("PORT"); serverPort != "" {
		if port, err := strconv.Atoi(serverPort); err == nil {
			opt.Port = port
		}
	}

	s.opt = opt

	return nil
}

func (s *server) Start() error {
	var err error

	// ====== init logger ===== //

	s.ctx = logutil.InitZeroLog(context.Background(), s.opt.LogLevel)

	// ===== init config ===== //

	s.cfg = config.NewConfig()
	if err = s.cfg.Load(s.ctx, s.opt.ConfigPath); err != nil {
		log.Ctx(s.ctx).Error().Msgf("load config failed, err: %v", err)
		return err
	}

	// ===== init repos ===== //

	s.baseRepo, err = repo.NewBaseRepo(s.ctx, s.cfg.MetadataDB)
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init base repo failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.baseRepo != nil {
			if err := s.baseRepo.Close(s.ctx); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close base repo failed, err: %v", err)
				return
			}
		}
	}()

	s.baseCache = repo.NewBaseCache(s.ctx)

	s.tenantRepo = repo.NewTenantRepo(s.ctx, s.baseRepo, s.baseCache)
	s.userRepo = repo.NewUserRepo(s.ctx, s.baseRepo)
	s.campaignRepo = repo.NewCampaignRepo(s.ctx, s.baseRepo)
	s.segmentRepo = repo.NewSegmentRepo(s.ctx, s.baseRepo)
	s.automationRepo = repo.NewAutomationRepo(s.ctx, s.baseRepo)

	// ===== init producer ===== //

	s.producer, err = mq.NewProducer(s.ctx, s.cfg.TaskQueue.ToProducerConfig())
	if err != nil {
		log.Ctx(s.ctx).Error().Msgf("init producer failed, err: %v", err)
		return err
	}
	defer func() {
		if err != nil && s.producer != nil {
			if err := s.producer.Close(); err != nil {
				log.Ctx(s.ctx).Error().Msgf("close producer failed, err: %v", err)
				return
			}
		}
	}()

	// ===== init handlers ===== //

	s.tenantHandler = handler.NewTenantHandler(s.tenantRepo)
	s.userHandler = handler.NewUserHandler(s.tenantRepo, s.userRepo)
	s.campaignHandler = handler.NewCampaignHandler(s.campaignRepo, s.segmentRepo, s.producer)
	s.automationHandler = handler.NewAutomationHandler(s.automationRepo, s.campaignRepo, s.producer)

	// ===== start server ===== //

	go func() {
		addr := fmt.Sprintf(":%d", s.opt.Port)

		log.Info().Msgf("starting HTTP server at %s", addr)

		httpServer := &http.Server{
			BaseContext: func(_ net.Listener) context.Context {
				return s.ctx
			},
			Addr:    addr,
			Handler: cors.AllowAll().Handler(s.registerRoutes()),
		}
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fail to start HTTP server, err: %v", err)
		}
	}()

	return nil
}

func (s *server) Stop() error {
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close producer failed, err: %v", err)
			return err
		}
	}

	if s.baseCache != nil {
		if err := s.baseCache.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close base cache failed, err: %v", err)
			return err
		}
	}

	if s.baseRepo != nil {
		if err := s.baseRepo.Close(s.ctx); err != nil {
			log.Ctx(s.ctx).Error().Msgf("close base repo failed, err: %v", err)
			return err
		}
	}

	return nil
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct{}

func (s *server) registerRoutes() http.Handler {
	r := &router.HttpRouter{
		Router: mux.NewRouter(),
	}

	tenantMiddlewares := []router.Middleware{
		router.NewTenantMiddleware(s.tenantRepo, s.userRepo),
	}

	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathHealthCheck,
		Method: http.MethodGet,
		Handler: router.Handler{
			Req: new(HealthCheckRequest),
			Res: new(HealthCheckResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return nil
			},
		},
	})

	// create_tenant
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathCreateTenant,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.CreateTenantRequest),
			Res: new(handler.CreateTenantResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.tenantHandler.CreateTenant(ctx, req.(*handler.CreateTenantRequest), res.(*handler.CreateTenantResponse))
			},
		},
	})

	// create_user
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:   config.PathCreateUser,
		Method: http.MethodPost,
		Handler: router.Handler{
			Req: new(handler.CreateUserRequest),
			Res: new(handler.CreateUserResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.userHandler.CreateUser(ctx, req.(*handler.CreateUserRequest), res.(*handler.CreateUserResponse))
			},
		},
	})

	// create_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathCreateCampaign,
		Method:      http.MethodPost,
		Middlewares: tenantMiddlewares,
		Handler: router.Handler{
			Req: new(handler.CreateCampaignRequest),
			Res: new(handler.CreateCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.CreateCampaign(ctx, req.(*handler.CreateCampaignRequest), res.(*handler.CreateCampaignResponse))
			},
		},
	})

	// get_campaigns
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathGetCampaigns,
		Method:      http.MethodPost,
		Middlewares: tenantMiddlewares,
		Handler: router.Handler{
			Req: new(handler.GetCampaignsRequest),
			Res: new(handler.GetCampaignsResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.GetCampaigns(ctx, req.(*handler.GetCampaignsRequest), res.(*handler.GetCampaignsResponse))
			},
		},
	})

	// run_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathRunCampaign,
		Method:      http.MethodPost,
		Middlewares: tenantMiddlewares,
		Handler: router.Handler{
			Req: new(handler.RunCampaignRequest),
			Res: new(handler.RunCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.RunCampaign(ctx, req.(*handler.RunCampaignRequest), res.(*handler.RunCampaignResponse))
			},
		},
	})

	// pause_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathPauseCampaign,
		Method:      http.MethodPost,
		Middlewares: tenantMiddlewares,
		Handler: router.Handler{
			Req: new(handler.PauseCampaignRequest),
			Res: new(handler.PauseCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.PauseCampaign(ctx, req.(*handler.PauseCampaignRequest), res.(*handler.PauseCampaignResponse))
			},
		},
	})

	// resume_campaign
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathResumeCampaign,
		Method:      http.MethodPost,
		Middlewares: tenantMiddlewares,
		Handler: router.Handler{
			Req: new(handler.ResumeCampaignRequest),
			Res: new(handler.ResumeCampaignResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.campaignHandler.ResumeCampaign(ctx, req.(*handler.ResumeCampaignRequest), res.(*handler.ResumeCampaignResponse))
			},
		},
	})

	// create_automation
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathCreateAutomation,
		Method:      http.MethodPost,
		Middlewares: tenantMiddlewares,
		Handler: router.Handler{
			Req: new(handler.CreateAutomationRequest),
			Res: new(handler.CreateAutomationResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.automationHandler.CreateAutomation(ctx, req.(*handler.CreateAutomationRequest), res.(*handler.CreateAutomationResponse))
			},
		},
	})

	// trigger_automation
	r.RegisterHttpRoute(&router.HttpRoute{
		Path:        config.PathTriggerAutomation,
		Method:      http.MethodPost,
		Middlewares: tenantMiddlewares,
		Handler: router.Handler{
			Req: new(handler.TriggerAutomationRequest),
			Res: new(handler.TriggerAutomationResponse),
			HandleFunc: func(ctx context.Context, req, res interface{}) error {
				return s.automationHandler.TriggerAutomation(ctx, req.(*handler.TriggerAutomationRequest), res.(*handler.TriggerAutomationResponse))
			},
		},
	})

	return r
}
