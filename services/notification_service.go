// services/notification_service.go
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"salonpro-gateway/appointments"
	"salonpro-gateway/dates"
	"salonpro-gateway/models"
	"salonpro-gateway/permissions"
	"salonpro-gateway/utils"
)

// MessageSender sends one WhatsApp or SMS message. The Twilio REST API
// service implements it.
type MessageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Templates use the placeholders [ClientName], [Salon], [Date] and [Time].
var DefaultTemplates = map[permissions.Action]string{
	permissions.ActionConfirm:    "Bonjour [ClientName], votre rendez-vous du [Date] à [Time] chez [Salon] est confirmé.",
	permissions.ActionCancel:     "Bonjour [ClientName], votre rendez-vous du [Date] à [Time] chez [Salon] a été annulé.",
	permissions.ActionReschedule: "Bonjour [ClientName], votre rendez-vous chez [Salon] a été reporté au [Date] à [Time].",
}

var logTypes = map[permissions.Action]string{
	permissions.ActionConfirm:    "confirmed",
	permissions.ActionCancel:     "cancelled",
	permissions.ActionReschedule: "rescheduled",
}

type NotificationConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

// Enabled reports whether Twilio credentials are present.
func (c NotificationConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

// NotificationService messages clients when staff confirm, cancel or
// reschedule their appointment, and records each attempt.
type NotificationService struct {
	db        *gorm.DB
	sender    MessageSender
	cfg       NotificationConfig
	templates map[permissions.Action]string
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotificationService builds a service backed by Twilio. db may be nil,
// in which case attempts are only logged.
func NewNotificationService(db *gorm.DB, cfg NotificationConfig, logger *slog.Logger) *NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newNotificationService(db, client.Api, cfg, logger)
}

func newNotificationService(db *gorm.DB, sender MessageSender, cfg NotificationConfig, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		db:        db,
		sender:    sender,
		cfg:       cfg,
		templates: DefaultTemplates,
		logger:    logger,
		now:       time.Now,
	}
}

// Notify implements appointments.Notifier. Failures are logged, never
// returned: a lost message must not fail the staff action.
func (s *NotificationService) Notify(ctx context.Context, ev appointments.Event) {
	template, ok := s.templates[ev.Action]
	if !ok {
		return
	}
	if ev.Client == nil || strings.TrimSpace(ev.Client.Phone) == "" {
		s.logger.Info("no phone number, skipping notification", "appointment", ev.Appointment.ID, "action", ev.Action)
		return
	}
	phone := cleanPhone(ev.Client.Phone)
	if !utils.ValidatePhone(phone) {
		s.logger.Warn("invalid phone number, skipping notification", "appointment", ev.Appointment.ID, "client", ev.Client.ID)
		return
	}

	message := render(template, ev)

	// WhatsApp for E.164 numbers, SMS otherwise
	channel := "sms"
	to := phone
	if strings.HasPrefix(phone, "+") && s.cfg.WhatsAppNumber != "" {
		channel = "whatsapp"
		to = "whatsapp:" + phone
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + s.cfg.WhatsAppNumber)
	} else {
		params.SetFrom(s.cfg.PhoneNumber)
	}

	status, errorMsg := "sent", ""
	resp, err := s.sender.CreateMessage(params)
	switch {
	case err != nil:
		s.logger.Error("send notification", "appointment", ev.Appointment.ID, "channel", channel, "err", err)
		status, errorMsg = "failed", err.Error()
	case resp != nil && resp.Sid != nil:
		s.logger.Info("notification sent", "appointment", ev.Appointment.ID, "channel", channel, "sid", *resp.Sid)
	default:
		s.logger.Info("notification sent without sid", "appointment", ev.Appointment.ID, "channel", channel)
	}

	if s.db == nil {
		return
	}
	entry := models.NotificationLog{
		AppointmentID: int64(ev.Appointment.ID),
		ClientID:      int64(ev.Client.ID),
		Type:          logTypes[ev.Action],
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       channel,
		SentAt:        s.now(),
	}
	if ev.Salon != nil {
		entry.SalonID = int64(ev.Salon.ID)
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.Error("record notification", "appointment", ev.Appointment.ID, "err", err)
	}
}

// History returns the notifications sent about one appointment, newest
// first.
func (s *NotificationService) History(ctx context.Context, appointmentID models.ID) ([]models.NotificationLog, error) {
	if s.db == nil {
		return []models.NotificationLog{}, nil
	}
	var logs []models.NotificationLog
	err := s.db.WithContext(ctx).
		Where("appointment_id = ?", int64(appointmentID)).
		Order("sent_at desc").
		Find(&logs).Error
	return logs, err
}

func render(template string, ev appointments.Event) string {
	name := ev.Client.DisplayName()
	salon := ""
	if ev.Salon != nil {
		salon = ev.Salon.Name
	}
	clock := ev.Appointment.StartTime
	if c, err := dates.NormalizeClock(clock); err == nil {
		clock = c
	}
	date := ev.Appointment.Date
	if t, err := dates.ParseDate(date); err == nil {
		date = t.Format("02/01/2006")
	}
	return strings.NewReplacer(
		"[ClientName]", name,
		"[Salon]", salon,
		"[Date]", date,
		"[Time]", clock,
	).Replace(template)
}

func cleanPhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(phone)
}
