package notification

import (
	"context"
	"errors"
	"fmt"

	"aira/models"
	"aira/services/language"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMSNotificationService delivers reminders as SMS through Twilio. Without
// credentials it only logs what would have been sent.
type SMSNotificationService struct {
	messages messageCreator
	from     string
	content  *language.Content
	logger   *zap.Logger
}

func NewSMSNotificationService(accountSID, authToken, from string, content *language.Content, logger *zap.Logger) *SMSNotificationService {
	var creator messageCreator
	if accountSID != "" && authToken != "" && from != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
		creator = client.Api
	}
	return newSMSNotificationService(creator, from, content, logger)
}

func newSMSNotificationService(creator messageCreator, from string, content *language.Content, logger *zap.Logger) *SMSNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSNotificationService{messages: creator, from: from, content: content, logger: logger}
}

func (s *SMSNotificationService) SendAppointmentReminder(ctx context.Context, appt *models.Appointment) error {
	if appt == nil {
		return errors.New("SendAppointmentReminder: nil appointment")
	}
	body := s.content.Reminder(appt.PreferredLanguage, appt.AppointmentDate, appt.AppointmentTime)

	if s.messages == nil {
		s.logger.Info("sms disabled, reminder not sent",
			zap.String("appointmentID", appt.ID),
			zap.String("to", appt.PatientPhone))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(appt.PatientPhone)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.messages.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("SendAppointmentReminder: failed to send sms for %s: %w", appt.ID, err)
	}
	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Info("reminder sms sent", zap.String("appointmentID", appt.ID), zap.String("messageSid", sid))
	return nil
}
