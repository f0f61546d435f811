package task

import (
	"context"
	"sync"
	"time"

	"outreach/dep"
	"outreach/entity"
	"outreach/pkg/goutil"
	"outreach/pkg/mq"
	"outreach/repo"
)

// in-memory fakes backing the task tests

type stubCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[uint64]*entity.Campaign
}

func newStubCampaignRepo(campaigns ...*entity.Campaign) *stubCampaignRepo {
	r := &stubCampaignRepo{campaigns: make(map[uint64]*entity.Campaign)}
	for _, c := range campaigns {
		r.campaigns[c.GetID()] = c
	}
	return r
}

func (r *stubCampaignRepo) Create(_ context.Context, tenantID, _ uint64, campaign *entity.Campaign) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uint64(len(r.campaigns) + 1)
	campaign.ID = goutil.Uint64(id)
	campaign.TenantID = goutil.Uint64(tenantID)
	r.campaigns[id] = campaign
	return id, nil
}

func (r *stubCampaignRepo) GetByID(_ context.Context, tenantID, campaignID uint64) (*entity.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok || c.GetTenantID() != tenantID {
		return nil, repo.ErrCampaignNotFound
	}
	return c, nil
}

func (r *stubCampaignRepo) GetMany(_ context.Context, _ uint64, _ *repo.CampaignFilter) ([]*entity.Campaign, *entity.Pagination, error) {
	return nil, nil, nil
}

func (r *stubCampaignRepo) Update(_ context.Context, tenantID uint64, campaign *entity.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[campaign.GetID()] = campaign
	return nil
}

func (r *stubCampaignRepo) SetTotalRecipients(_ context.Context, tenantID, campaignID, total uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok || c.GetTenantID() != tenantID {
		return repo.ErrCampaignNotFound
	}
	c.TotalRecipients = goutil.Uint64(total)
	return nil
}

func (r *stubCampaignRepo) FinishSendRun(_ context.Context, tenantID, campaignID, sent, delivered, bounced uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok || c.GetTenantID() != tenantID {
		return repo.ErrCampaignNotFound
	}
	c.SentCount = goutil.Uint64(c.GetSentCount() + sent)
	c.DeliveredCount = goutil.Uint64(c.GetDeliveredCount() + delivered)
	c.BouncedCount = goutil.Uint64(c.GetBouncedCount() + bounced)
	c.Status = entity.CampaignStatusSent
	c.SentAt = goutil.Uint64(uint64(time.Now().Unix()))
	return nil
}

func (r *stubCampaignRepo) GetDueCampaigns(_ context.Context, _ uint64) ([]*entity.Campaign, error) {
	return nil, nil
}

type stubRecipientRepo struct {
	mu     sync.Mutex
	nextID uint64
	rows   []*entity.Recipient
}

func newStubRecipientRepo() *stubRecipientRepo {
	return &stubRecipientRepo{nextID: 1}
}

func (r *stubRecipientRepo) UpsertMany(_ context.Context, tenantID uint64, recipients []*entity.Recipient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, recipient := range recipients {
		exists := false
		for _, row := range r.rows {
			if row.GetCampaignID() == recipient.GetCampaignID() && row.GetEmail() == recipient.GetEmail() {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		recipient.ID = goutil.Uint64(r.nextID)
		recipient.TenantID = goutil.Uint64(tenantID)
		r.nextID++
		r.rows = append(r.rows, recipient)
	}
	return nil
}

func (r *stubRecipientRepo) CountByCampaignID(_ context.Context, tenantID, campaignID uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count uint64
	for _, row := range r.rows {
		if row.GetTenantID() == tenantID && row.GetCampaignID() == campaignID {
			count++
		}
	}
	return count, nil
}

func (r *stubRecipientRepo) GetPendingByCampaignID(_ context.Context, tenantID, campaignID uint64, limit uint32) ([]*entity.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Recipient, 0)
	for _, row := range r.rows {
		if row.GetTenantID() == tenantID && row.GetCampaignID() == campaignID && row.IsPending() {
			out = append(out, row)
			if uint32(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *stubRecipientRepo) MarkSent(_ context.Context, tenantID, recipientID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := uint64(time.Now().Unix())
	for _, row := range r.rows {
		if row.GetID() == recipientID && row.GetTenantID() == tenantID {
			row.Status = entity.RecipientStatusSent
			row.SentAt = goutil.Uint64(now)
			row.DeliveredAt = goutil.Uint64(now)
			row.ErrorMessage = nil
		}
	}
	return nil
}

func (r *stubRecipientRepo) MarkBounced(_ context.Context, tenantID, recipientID uint64, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.GetID() == recipientID && row.GetTenantID() == tenantID {
			row.Status = entity.RecipientStatusBounced
			row.BouncedAt = goutil.Uint64(uint64(time.Now().Unix()))
			row.ErrorMessage = goutil.String(errMsg)
		}
	}
	return nil
}

type stubContactRepo struct {
	mu       sync.Mutex
	contacts map[uint64]*entity.Contact
}

func newStubContactRepo(contacts ...*entity.Contact) *stubContactRepo {
	r := &stubContactRepo{contacts: make(map[uint64]*entity.Contact)}
	for _, c := range contacts {
		r.contacts[c.GetID()] = c
	}
	return r
}

func (r *stubContactRepo) GetAnyByID(_ context.Context, contactID uint64) (*entity.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[contactID]
	if !ok {
		return nil, repo.ErrContactNotFound
	}
	return c, nil
}

func (r *stubContactRepo) GetManyByIDs(_ context.Context, tenantID uint64, contactIDs []uint64, _ *entity.Pagination) ([]*entity.Contact, *entity.Pagination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Contact, 0)
	for _, id := range contactIDs {
		c, ok := r.contacts[id]
		if !ok || c.GetTenantID() != tenantID || c.GetEmail() == "" {
			continue
		}
		out = append(out, c)
	}
	return out, new(entity.Pagination), nil
}

func (r *stubContactRepo) UpdateFields(_ context.Context, tenantID, contactID uint64, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[contactID]
	if !ok || c.GetTenantID() != tenantID {
		return repo.ErrContactNotFound
	}
	if v, ok := fields["first_name"].(string); ok {
		c.FirstName = goutil.String(v)
	}
	if v, ok := fields["last_name"].(string); ok {
		c.LastName = goutil.String(v)
	}
	if v, ok := fields["email"].(string); ok {
		c.Email = goutil.String(v)
	}
	return nil
}

type stubSegmentRepo struct {
	mu       sync.Mutex
	segments map[uint64]*entity.Segment
	members  map[uint64][]uint64
}

func newStubSegmentRepo(segments ...*entity.Segment) *stubSegmentRepo {
	r := &stubSegmentRepo{
		segments: make(map[uint64]*entity.Segment),
		members:  make(map[uint64][]uint64),
	}
	for _, s := range segments {
		r.segments[s.GetID()] = s
	}
	return r
}

func (r *stubSegmentRepo) Create(_ context.Context, tenantID uint64, segment *entity.Segment) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uint64(len(r.segments) + 1)
	segment.ID = goutil.Uint64(id)
	segment.TenantID = goutil.Uint64(tenantID)
	r.segments[id] = segment
	return id, nil
}

func (r *stubSegmentRepo) GetByID(_ context.Context, tenantID, segmentID uint64) (*entity.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.segments[segmentID]
	if !ok || s.GetTenantID() != tenantID {
		return nil, repo.ErrSegmentNotFound
	}
	return s, nil
}

func (r *stubSegmentRepo) GetContactIDs(_ context.Context, tenantID, segmentID uint64, p *entity.Pagination) ([]uint64, *entity.Pagination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.members[segmentID]
	return ids, &entity.Pagination{HasNext: goutil.Bool(false)}, nil
}

func (r *stubSegmentRepo) AddContact(_ context.Context, tenantID, segmentID, contactID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if goutil.ContainsUint64(r.members[segmentID], contactID) {
		return nil
	}
	r.members[segmentID] = append(r.members[segmentID], contactID)
	return nil
}

type stubAutomationRepo struct {
	mu          sync.Mutex
	automations map[uint64]*entity.Automation
}

func newStubAutomationRepo(automations ...*entity.Automation) *stubAutomationRepo {
	r := &stubAutomationRepo{automations: make(map[uint64]*entity.Automation)}
	for _, a := range automations {
		r.automations[a.GetID()] = a
	}
	return r
}

func (r *stubAutomationRepo) Create(_ context.Context, tenantID uint64, automation *entity.Automation) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uint64(len(r.automations) + 1)
	automation.ID = goutil.Uint64(id)
	automation.TenantID = goutil.Uint64(tenantID)
	r.automations[id] = automation
	return id, nil
}

func (r *stubAutomationRepo) GetByID(_ context.Context, tenantID, automationID uint64) (*entity.Automation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.automations[automationID]
	if !ok || a.GetTenantID() != tenantID {
		return nil, repo.ErrAutomationNotFound
	}
	return a, nil
}

func (r *stubAutomationRepo) GetByTriggerEvent(_ context.Context, tenantID uint64, triggerEvent string) ([]*entity.Automation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Automation, 0)
	for _, a := range r.automations {
		if a.GetTenantID() == tenantID && a.GetTriggerEvent() == triggerEvent {
			out = append(out, a)
		}
	}
	return out, nil
}

type sentMessage struct {
	msg   *mq.Message
	delay time.Duration
}

type stubMessageSender struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (s *stubMessageSender) SendMessage(msg *mq.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, sentMessage{msg: msg})
	return nil
}

func (s *stubMessageSender) SendMessageAfter(msg *mq.Message, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, sentMessage{msg: msg, delay: delay})
	return nil
}

func (s *stubMessageSender) sent() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.messages...)
}

type sentEmail struct {
	to      string
	subject string
	html    string
}

type stubEmailService struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []sentEmail
}

func newStubEmailService(failFor ...string) *stubEmailService {
	s := &stubEmailService{failFor: make(map[string]bool)}
	for _, email := range failFor {
		s.failFor[email] = true
	}
	return s
}

func (s *stubEmailService) SendEmail(_ context.Context, e *dep.SendSmtpEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[e.To.Email] {
		return errMailboxUnavailable
	}
	s.sent = append(s.sent, sentEmail{to: e.To.Email, subject: e.Subject, html: e.HtmlContent})
	return nil
}

func (s *stubEmailService) Close(_ context.Context) error {
	return nil
}

var errMailboxUnavailable = mailboxError("mailbox unavailable")

type mailboxError string

func (e mailboxError) Error() string {
	return string(e)
}
