package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"outreach/entity"
	"outreach/pkg/goutil"
	"outreach/pkg/mq"
	"outreach/repo"
)

type fakeCampaignRepo struct {
	mu        sync.Mutex
	nextID    uint64
	campaigns map[uint64]*entity.Campaign
}

func newFakeCampaignRepo(campaigns ...*entity.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{nextID: 100, campaigns: make(map[uint64]*entity.Campaign)}
	for _, c := range campaigns {
		r.campaigns[c.GetID()] = c
	}
	return r
}

func (r *fakeCampaignRepo) Create(_ context.Context, tenantID, creatorID uint64, campaign *entity.Campaign) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	campaign.ID = goutil.Uint64(r.nextID)
	campaign.TenantID = goutil.Uint64(tenantID)
	campaign.CreatorID = goutil.Uint64(creatorID)
	r.campaigns[r.nextID] = campaign
	r.nextID++
	return campaign.GetID(), nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, tenantID, campaignID uint64) (*entity.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok || c.GetTenantID() != tenantID {
		return nil, repo.ErrCampaignNotFound
	}
	return c, nil
}

func (r *fakeCampaignRepo) GetMany(_ context.Context, _ uint64, _ *repo.CampaignFilter) ([]*entity.Campaign, *entity.Pagination, error) {
	return nil, nil, nil
}

func (r *fakeCampaignRepo) Update(_ context.Context, _ uint64, campaign *entity.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[campaign.GetID()] = campaign
	return nil
}

func (r *fakeCampaignRepo) SetTotalRecipients(_ context.Context, _, _, _ uint64) error {
	return nil
}

func (r *fakeCampaignRepo) FinishSendRun(_ context.Context, _, _, _, _, _ uint64) error {
	return nil
}

func (r *fakeCampaignRepo) GetDueCampaigns(_ context.Context, _ uint64) ([]*entity.Campaign, error) {
	return nil, nil
}

type fakeSegmentRepo struct {
	segments map[uint64]*entity.Segment
}

func (r *fakeSegmentRepo) Create(_ context.Context, _ uint64, _ *entity.Segment) (uint64, error) {
	return 0, nil
}

func (r *fakeSegmentRepo) GetByID(_ context.Context, tenantID, segmentID uint64) (*entity.Segment, error) {
	s, ok := r.segments[segmentID]
	if !ok || s.GetTenantID() != tenantID {
		return nil, repo.ErrSegmentNotFound
	}
	return s, nil
}

func (r *fakeSegmentRepo) GetContactIDs(_ context.Context, _, _ uint64, _ *entity.Pagination) ([]uint64, *entity.Pagination, error) {
	return nil, nil, nil
}

func (r *fakeSegmentRepo) AddContact(_ context.Context, _, _, _ uint64) error {
	return nil
}

type fakeMessageSender struct {
	mu       sync.Mutex
	messages []*mq.Message
}

func (s *fakeMessageSender) SendMessage(msg *mq.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeMessageSender) SendMessageAfter(msg *mq.Message, _ time.Duration) error {
	return s.SendMessage(msg)
}

func testContextInfo(tenantID, userID uint64) ContextInfo {
	return ContextInfo{
		Tenant: &entity.Tenant{ID: goutil.Uint64(tenantID), Status: entity.TenantStatusNormal},
		User:   &entity.User{ID: goutil.Uint64(userID)},
	}
}

func draftCampaign(tenantID, campaignID uint64) *entity.Campaign {
	return &entity.Campaign{
		ID:       goutil.Uint64(campaignID),
		TenantID: goutil.Uint64(tenantID),
		Name:     goutil.String("welcome"),
		Status:   entity.CampaignStatusDraft,
		Settings: &entity.CampaignSettings{
			RecipientMode:       goutil.String(entity.RecipientModeManual),
			RecipientContactIDs: []uint64{10, 11},
		},
	}
}

func TestCreateCampaign(t *testing.T) {
	campaignRepo := newFakeCampaignRepo()
	h := NewCampaignHandler(campaignRepo, &fakeSegmentRepo{}, new(fakeMessageSender))

	req := &CreateCampaignRequest{
		ContextInfo: testContextInfo(4, 9),
		Name:        goutil.String("welcome"),
		Subject:     goutil.String("Hello {{name}}"),
		Content:     goutil.String("<p>Hi</p>"),
		Settings: &CampaignSettings{
			RecipientMode:       goutil.String(entity.RecipientModeManual),
			RecipientContactIDs: []uint64{10, 11},
		},
	}
	res := new(CreateCampaignResponse)

	if err := h.CreateCampaign(context.Background(), req, res); err != nil {
		t.Fatalf("create campaign err: %v", err)
	}

	if res.Campaign.GetStatus() != entity.CampaignStatusDraft {
		t.Errorf("expect draft, got %v", res.Campaign.GetStatus())
	}
	if res.Campaign.GetTenantID() != 4 {
		t.Errorf("expect tenant 4, got %d", res.Campaign.GetTenantID())
	}
}

func TestCreateCampaignSegmentModeRequiresSegment(t *testing.T) {
	h := NewCampaignHandler(newFakeCampaignRepo(), &fakeSegmentRepo{}, new(fakeMessageSender))

	req := &CreateCampaignRequest{
		ContextInfo: testContextInfo(4, 9),
		Name:        goutil.String("welcome"),
		Subject:     goutil.String("Hello"),
		Content:     goutil.String("<p>Hi</p>"),
		Settings: &CampaignSettings{
			RecipientMode: goutil.String(entity.RecipientModeSegment),
		},
	}

	if err := h.CreateCampaign(context.Background(), req, new(CreateCampaignResponse)); err == nil {
		t.Fatalf("expect validation error for segment mode without segment_id")
	}
}

func TestRunCampaignEnqueuesHydration(t *testing.T) {
	campaignRepo := newFakeCampaignRepo(draftCampaign(4, 1))
	sender := new(fakeMessageSender)
	h := NewCampaignHandler(campaignRepo, &fakeSegmentRepo{}, sender)

	req := &RunCampaignRequest{
		ContextInfo: testContextInfo(4, 9),
		CampaignID:  goutil.Uint64(1),
	}
	res := new(RunCampaignResponse)

	if err := h.RunCampaign(context.Background(), req, res); err != nil {
		t.Fatalf("run campaign err: %v", err)
	}

	if res.Campaign.GetStatus() != entity.CampaignStatusRunning {
		t.Errorf("expect running, got %v", res.Campaign.GetStatus())
	}

	if len(sender.messages) != 1 || sender.messages[0].Payload != mq.PayloadHydrateCampaign {
		t.Fatalf("expect one hydrate message, got %v", sender.messages)
	}
}

func TestRunCampaignRejectsTerminal(t *testing.T) {
	campaign := draftCampaign(4, 1)
	campaign.Status = entity.CampaignStatusSent

	h := NewCampaignHandler(newFakeCampaignRepo(campaign), &fakeSegmentRepo{}, new(fakeMessageSender))

	req := &RunCampaignRequest{
		ContextInfo: testContextInfo(4, 9),
		CampaignID:  goutil.Uint64(1),
	}

	if err := h.RunCampaign(context.Background(), req, new(RunCampaignResponse)); err == nil {
		t.Fatalf("expect error for terminal campaign")
	}
}

func TestRunCampaignCrossTenant(t *testing.T) {
	h := NewCampaignHandler(newFakeCampaignRepo(draftCampaign(4, 1)), &fakeSegmentRepo{}, new(fakeMessageSender))

	req := &RunCampaignRequest{
		ContextInfo: testContextInfo(5, 9),
		CampaignID:  goutil.Uint64(1),
	}

	if err := h.RunCampaign(context.Background(), req, new(RunCampaignResponse)); err == nil {
		t.Fatalf("expect not found for cross-tenant run")
	}
}

func TestPauseAndResumeCampaign(t *testing.T) {
	campaign := draftCampaign(4, 1)
	campaign.Status = entity.CampaignStatusRunning

	campaignRepo := newFakeCampaignRepo(campaign)
	h := NewCampaignHandler(campaignRepo, &fakeSegmentRepo{}, new(fakeMessageSender))

	ctx := context.Background()

	pauseRes := new(PauseCampaignResponse)
	if err := h.PauseCampaign(ctx, &PauseCampaignRequest{
		ContextInfo: testContextInfo(4, 9),
		CampaignID:  goutil.Uint64(1),
	}, pauseRes); err != nil {
		t.Fatalf("pause err: %v", err)
	}
	if !pauseRes.Campaign.IsPaused() {
		t.Errorf("expect paused")
	}

	resumeRes := new(ResumeCampaignResponse)
	if err := h.ResumeCampaign(ctx, &ResumeCampaignRequest{
		ContextInfo: testContextInfo(4, 9),
		CampaignID:  goutil.Uint64(1),
	}, resumeRes); err != nil {
		t.Fatalf("resume err: %v", err)
	}
	if resumeRes.Campaign.IsPaused() {
		t.Errorf("expect unpaused")
	}
	if resumeRes.Campaign.GetStatus() != entity.CampaignStatusRunning {
		t.Errorf("expect running after resume, got %v", resumeRes.Campaign.GetStatus())
	}
}

func TestResumeRequiresPaused(t *testing.T) {
	campaign := draftCampaign(4, 1)
	campaign.Status = entity.CampaignStatusRunning

	h := NewCampaignHandler(newFakeCampaignRepo(campaign), &fakeSegmentRepo{}, new(fakeMessageSender))

	if err := h.ResumeCampaign(context.Background(), &ResumeCampaignRequest{
		ContextInfo: testContextInfo(4, 9),
		CampaignID:  goutil.Uint64(1),
	}, new(ResumeCampaignResponse)); err == nil {
		t.Fatalf("expect error resuming a non-paused campaign")
	}
}
