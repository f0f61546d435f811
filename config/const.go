package config

const (
	PathHealthCheck       = "/"
	PathCreateTenant      = "/create_tenant"
	PathCreateUser        = "/create_user"
	PathCreateCampaign    = "/create_campaign"
	PathGetCampaigns      = "/get_campaigns"
	PathRunCampaign       = "/run_campaign"
	PathPauseCampaign     = "/pause_campaign"
	PathResumeCampaign    = "/resume_campaign"
	PathCreateAutomation  = "/create_automation"
	PathTriggerAutomation = "/trigger_automation"
)

const (
	DefaultPort   = 9090
	LogLevelDebug = "DEBUG"
)

const (
	// HydrationPageSize bounds memory when resolving a targeting rule.
	HydrationPageSize = 500
	// SendChunkSize bounds the per-chunk transaction/memory footprint.
	SendChunkSize = 200
	// PausedRecheckSeconds is the fixed deferral before a paused
	// campaign's task is re-attempted.
	PausedRecheckSeconds = 30
)

var (
	EmptyJson = []byte("{}")
)
