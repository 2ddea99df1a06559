package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"salonpro-gateway/appointments"
	"salonpro-gateway/models"
	"salonpro-gateway/permissions"
)

type fakeSender struct {
	sent []*twilioApi.CreateMessageParams
	err  error
}

func (f *fakeSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.sent = append(f.sent, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

var testConfig = NotificationConfig{
	AccountSID:     "AC123",
	AuthToken:      "token",
	PhoneNumber:    "+15550001111",
	WhatsAppNumber: "+15550002222",
}

func event(action permissions.Action, phone string) appointments.Event {
	return appointments.Event{
		Action: action,
		Appointment: models.Appointment{
			ID:        7,
			Date:      "2024-06-10",
			StartTime: "14:30:00",
		},
		Salon:  &models.Salon{ID: 1, Name: "Salon Élégance"},
		Client: &models.Client{ID: 21, FirstName: "Awa", LastName: "Diallo", Phone: phone},
	}
}

func TestConfirmationIsSentOverWhatsApp(t *testing.T) {
	sender := &fakeSender{}
	svc := newNotificationService(nil, sender, testConfig, nil)

	svc.Notify(context.Background(), event(permissions.ActionConfirm, "+225 07 08 09 10"))

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	p := sender.sent[0]
	if *p.To != "whatsapp:+22507080910" {
		t.Fatalf("unexpected recipient %q", *p.To)
	}
	if *p.From != "whatsapp:+15550002222" {
		t.Fatalf("unexpected sender %q", *p.From)
	}
	want := "Bonjour Awa Diallo, votre rendez-vous du 10/06/2024 à 14:30 chez Salon Élégance est confirmé."
	if *p.Body != want {
		t.Fatalf("body = %q, want %q", *p.Body, want)
	}
}

func TestLocalNumbersFallBackToSMS(t *testing.T) {
	sender := &fakeSender{}
	svc := newNotificationService(nil, sender, testConfig, nil)

	svc.Notify(context.Background(), event(permissions.ActionCancel, "7080910115"))

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	p := sender.sent[0]
	if *p.To != "7080910115" || *p.From != testConfig.PhoneNumber {
		t.Fatalf("expected sms from %s to 7080910115, got %q -> %q", testConfig.PhoneNumber, *p.From, *p.To)
	}
	if !strings.Contains(*p.Body, "annulé") {
		t.Fatalf("expected a cancellation message, got %q", *p.Body)
	}
}

func TestNothingIsSentWithoutAUsablePhone(t *testing.T) {
	sender := &fakeSender{}
	svc := newNotificationService(nil, sender, testConfig, nil)

	svc.Notify(context.Background(), event(permissions.ActionConfirm, ""))
	svc.Notify(context.Background(), event(permissions.ActionConfirm, "not a phone"))
	ev := event(permissions.ActionConfirm, "+22507080910")
	ev.Client = nil
	svc.Notify(context.Background(), ev)

	if len(sender.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(sender.sent))
	}
}

func TestOnlyClientFacingActionsNotify(t *testing.T) {
	sender := &fakeSender{}
	svc := newNotificationService(nil, sender, testConfig, nil)

	for _, action := range []permissions.Action{
		permissions.ActionStart,
		permissions.ActionComplete,
		permissions.ActionMove,
		permissions.ActionDelete,
	} {
		svc.Notify(context.Background(), event(action, "+22507080910"))
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(sender.sent))
	}

	svc.Notify(context.Background(), event(permissions.ActionReschedule, "+22507080910"))
	if len(sender.sent) != 1 || !strings.Contains(*sender.sent[0].Body, "reporté au 10/06/2024 à 14:30") {
		t.Fatalf("expected a reschedule message, got %d messages", len(sender.sent))
	}
}

func TestSendFailureDoesNotPanic(t *testing.T) {
	sender := &fakeSender{err: errors.New("twilio down")}
	svc := newNotificationService(nil, sender, testConfig, nil)

	svc.Notify(context.Background(), event(permissions.ActionConfirm, "+22507080910"))

	if len(sender.sent) != 1 {
		t.Fatalf("expected one attempt, got %d", len(sender.sent))
	}
	logs, err := svc.History(context.Background(), 7)
	if err != nil || len(logs) != 0 {
		t.Fatalf("expected empty history without a database, got %v, %v", logs, err)
	}
}
