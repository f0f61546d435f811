package task

import (
	"context"
	"testing"
	"time"

	"outreach/entity"
	"outreach/pkg/goutil"
	"outreach/pkg/mq"
)

func automationMsg(tenantID, automationID, contactID uint64) *mq.Message {
	return &mq.Message{
		Payload: mq.PayloadRunAutomation,
		Body: &mq.RunAutomation{
			TenantID:     goutil.Uint64(tenantID),
			AutomationID: goutil.Uint64(automationID),
			ContactID:    goutil.Uint64(contactID),
		},
	}
}

func newAutomation(tenantID, automationID, campaignID uint64, action string, metadata entity.AutomationMetadata) *entity.Automation {
	return &entity.Automation{
		ID:           goutil.Uint64(automationID),
		TenantID:     goutil.Uint64(tenantID),
		CampaignID:   goutil.Uint64(campaignID),
		TriggerEvent: goutil.String("contact.signed_up"),
		DelayMinutes: goutil.Uint64(15),
		Action:       goutil.String(action),
		Metadata:     metadata,
		Status:       entity.AutomationStatusNormal,
	}
}

func TestDispatchSendEmail(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	recipientRepo := newStubRecipientRepo()
	contactRepo := newStubContactRepo(
		&entity.Contact{ID: goutil.Uint64(10), TenantID: goutil.Uint64(4), FirstName: goutil.String("Ada"), Email: goutil.String("a@x.com")},
	)
	automationRepo := newStubAutomationRepo(newAutomation(4, 1, 1, entity.AutomationActionSendEmail, nil))
	msgSender := new(stubMessageSender)

	d := NewDispatcher(automationRepo, campaignRepo, contactRepo, newStubSegmentRepo(), recipientRepo, msgSender)

	if err := d.Dispatch(context.Background(), automationMsg(4, 1, 10)); err != nil {
		t.Fatalf("dispatch err: %v", err)
	}

	count, _ := recipientRepo.CountByCampaignID(context.Background(), 4, 1)
	if count != 1 {
		t.Fatalf("expect 1 recipient upserted, got %d", count)
	}

	campaign, _ := campaignRepo.GetByID(context.Background(), 4, 1)
	if campaign.GetTotalRecipients() != 1 {
		t.Errorf("expect total_recipients 1, got %d", campaign.GetTotalRecipients())
	}

	msgs := msgSender.sent()
	if len(msgs) != 1 {
		t.Fatalf("expect 1 send message, got %d", len(msgs))
	}
	if msgs[0].msg.Payload != mq.PayloadSendCampaign {
		t.Errorf("expect send_campaign payload, got %v", msgs[0].msg.Payload)
	}
	if msgs[0].delay != 15*time.Minute {
		t.Errorf("expect 15m delay, got %v", msgs[0].delay)
	}
}

func TestDispatchSendEmailExistingRecipient(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	recipientRepo := newStubRecipientRepo()
	seedPending(t, recipientRepo, 1, map[string]string{"a@x.com": "Ada"})
	contactRepo := newStubContactRepo(
		&entity.Contact{ID: goutil.Uint64(10), TenantID: goutil.Uint64(4), Email: goutil.String("a@x.com")},
	)
	automationRepo := newStubAutomationRepo(newAutomation(4, 1, 1, entity.AutomationActionSendEmail, nil))

	d := NewDispatcher(automationRepo, campaignRepo, contactRepo, newStubSegmentRepo(), recipientRepo, new(stubMessageSender))

	if err := d.Dispatch(context.Background(), automationMsg(4, 1, 10)); err != nil {
		t.Fatalf("dispatch err: %v", err)
	}

	count, _ := recipientRepo.CountByCampaignID(context.Background(), 4, 1)
	if count != 1 {
		t.Errorf("expect no duplicate recipient, got %d", count)
	}
}

func TestDispatchAddToSegment(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	contactRepo := newStubContactRepo(
		&entity.Contact{ID: goutil.Uint64(10), TenantID: goutil.Uint64(4), Email: goutil.String("a@x.com")},
	)
	segmentRepo := newStubSegmentRepo(&entity.Segment{ID: goutil.Uint64(7), TenantID: goutil.Uint64(4)})
	automationRepo := newStubAutomationRepo(
		newAutomation(4, 1, 1, entity.AutomationActionAddToSegment, entity.AutomationMetadata{"segment_id": float64(7)}),
	)

	d := NewDispatcher(automationRepo, campaignRepo, contactRepo, segmentRepo, newStubRecipientRepo(), new(stubMessageSender))

	ctx := context.Background()
	if err := d.Dispatch(ctx, automationMsg(4, 1, 10)); err != nil {
		t.Fatalf("dispatch err: %v", err)
	}

	if !goutil.ContainsUint64(segmentRepo.members[7], 10) {
		t.Errorf("expect contact 10 in segment 7")
	}

	// repeated dispatch stays idempotent
	if err := d.Dispatch(ctx, automationMsg(4, 1, 10)); err != nil {
		t.Fatalf("second dispatch err: %v", err)
	}
	if len(segmentRepo.members[7]) != 1 {
		t.Errorf("expect single membership, got %d", len(segmentRepo.members[7]))
	}
}

func TestDispatchAddToSegmentMissingMetadata(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	contactRepo := newStubContactRepo(
		&entity.Contact{ID: goutil.Uint64(10), TenantID: goutil.Uint64(4), Email: goutil.String("a@x.com")},
	)
	segmentRepo := newStubSegmentRepo()
	automationRepo := newStubAutomationRepo(
		newAutomation(4, 1, 1, entity.AutomationActionAddToSegment, nil),
	)

	d := NewDispatcher(automationRepo, campaignRepo, contactRepo, segmentRepo, newStubRecipientRepo(), new(stubMessageSender))

	if err := d.Dispatch(context.Background(), automationMsg(4, 1, 10)); err != nil {
		t.Fatalf("expect no-op for missing segment_id, got %v", err)
	}

	if len(segmentRepo.members) != 0 {
		t.Errorf("expect no memberships")
	}
}

func TestDispatchUpdateContact(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	contactRepo := newStubContactRepo(
		&entity.Contact{ID: goutil.Uint64(10), TenantID: goutil.Uint64(4), FirstName: goutil.String("Ada"), Email: goutil.String("a@x.com")},
	)
	automationRepo := newStubAutomationRepo(
		newAutomation(4, 1, 1, entity.AutomationActionUpdateContact, entity.AutomationMetadata{
			"contact_updates": map[string]interface{}{"first_name": "Adeline"},
		}),
	)

	d := NewDispatcher(automationRepo, campaignRepo, contactRepo, newStubSegmentRepo(), newStubRecipientRepo(), new(stubMessageSender))

	if err := d.Dispatch(context.Background(), automationMsg(4, 1, 10)); err != nil {
		t.Fatalf("dispatch err: %v", err)
	}

	contact, _ := contactRepo.GetAnyByID(context.Background(), 10)
	if contact.GetFirstName() != "Adeline" {
		t.Errorf("expect patched first name, got %q", contact.GetFirstName())
	}
}

func TestDispatchTenantMismatch(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	// contact belongs to a different tenant
	contactRepo := newStubContactRepo(
		&entity.Contact{ID: goutil.Uint64(10), TenantID: goutil.Uint64(5), FirstName: goutil.String("Eve"), Email: goutil.String("e@z.com")},
	)
	segmentRepo := newStubSegmentRepo(&entity.Segment{ID: goutil.Uint64(7), TenantID: goutil.Uint64(4)})
	recipientRepo := newStubRecipientRepo()
	msgSender := new(stubMessageSender)

	for _, action := range []string{
		entity.AutomationActionSendEmail,
		entity.AutomationActionAddToSegment,
		entity.AutomationActionUpdateContact,
	} {
		automationRepo := newStubAutomationRepo(
			newAutomation(4, 1, 1, action, entity.AutomationMetadata{
				"segment_id":      float64(7),
				"contact_updates": map[string]interface{}{"first_name": "Mallory"},
			}),
		)

		d := NewDispatcher(automationRepo, campaignRepo, contactRepo, segmentRepo, recipientRepo, msgSender)

		if err := d.Dispatch(context.Background(), automationMsg(4, 1, 10)); err != nil {
			t.Fatalf("action %s: expect clean termination, got %v", action, err)
		}
	}

	count, _ := recipientRepo.CountByCampaignID(context.Background(), 4, 1)
	if count != 0 {
		t.Errorf("expect no recipient rows across actions, got %d", count)
	}
	if len(segmentRepo.members) != 0 {
		t.Errorf("expect no segment mutation")
	}
	contact, _ := contactRepo.GetAnyByID(context.Background(), 10)
	if contact.GetFirstName() != "Eve" {
		t.Errorf("expect contact untouched, got %q", contact.GetFirstName())
	}
	if len(msgSender.sent()) != 0 {
		t.Errorf("expect no messages")
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	contactRepo := newStubContactRepo(
		&entity.Contact{ID: goutil.Uint64(10), TenantID: goutil.Uint64(4), Email: goutil.String("a@x.com")},
	)
	automationRepo := newStubAutomationRepo(newAutomation(4, 1, 1, "archive_contact", nil))
	msgSender := new(stubMessageSender)

	d := NewDispatcher(automationRepo, campaignRepo, contactRepo, newStubSegmentRepo(), newStubRecipientRepo(), msgSender)

	if err := d.Dispatch(context.Background(), automationMsg(4, 1, 10)); err != nil {
		t.Fatalf("expect unknown action to be ignored, got %v", err)
	}

	if len(msgSender.sent()) != 0 {
		t.Errorf("expect no side effects for unknown action")
	}
}

func TestDispatchMissingAutomation(t *testing.T) {
	d := NewDispatcher(newStubAutomationRepo(), newStubCampaignRepo(), newStubContactRepo(),
		newStubSegmentRepo(), newStubRecipientRepo(), new(stubMessageSender))

	if err := d.Dispatch(context.Background(), automationMsg(4, 99, 10)); err != nil {
		t.Fatalf("expect nil err for missing automation, got %v", err)
	}
}

func TestDispatchMissingContact(t *testing.T) {
	campaignRepo := newStubCampaignRepo(manualCampaign(4, 1, nil))
	automationRepo := newStubAutomationRepo(newAutomation(4, 1, 1, entity.AutomationActionSendEmail, nil))

	d := NewDispatcher(automationRepo, campaignRepo, newStubContactRepo(),
		newStubSegmentRepo(), newStubRecipientRepo(), new(stubMessageSender))

	if err := d.Dispatch(context.Background(), automationMsg(4, 1, 99)); err != nil {
		t.Fatalf("expect nil err for missing contact, got %v", err)
	}
}
