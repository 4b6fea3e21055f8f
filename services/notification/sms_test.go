package notification

import (
	"context"
	"errors"
	"testing"

	"aira/models"
	"aira/services/language"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessages struct {
	params []*openapi.CreateMessageParams
	err    error
}

func (f *fakeMessages) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.params = append(f.params, p)
	sid := "SM1"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func content() *language.Content {
	catalog := language.NewCatalog([]string{"en", "ml"}, "en", "ml", true)
	return language.NewContent(catalog, language.ClinicInfo{Name: "Smile Dental", Phone: "+914933000000"}, nil)
}

func appointment() *models.Appointment {
	return &models.Appointment{
		ID:                "a1",
		PatientPhone:      "+919876543210",
		AppointmentDate:   "2030-01-10",
		AppointmentTime:   "10:30",
		PreferredLanguage: "en",
	}
}

func TestSendAppointmentReminder(t *testing.T) {
	fake := &fakeMessages{}
	svc := newSMSNotificationService(fake, "+15550001111", content(), nil)

	require.NoError(t, svc.SendAppointmentReminder(context.Background(), appointment()))
	require.Len(t, fake.params, 1)
	assert.Equal(t, "+919876543210", *fake.params[0].To)
	assert.Equal(t, "+15550001111", *fake.params[0].From)
	assert.Contains(t, *fake.params[0].Body, "2030-01-10 at 10:30")
	assert.Contains(t, *fake.params[0].Body, "Smile Dental")
}

func TestSendAppointmentReminderFailure(t *testing.T) {
	svc := newSMSNotificationService(&fakeMessages{err: errors.New("21211 invalid number")}, "+15550001111", content(), nil)
	assert.Error(t, svc.SendAppointmentReminder(context.Background(), appointment()))
}

func TestSendAppointmentReminderDisabled(t *testing.T) {
	svc := NewSMSNotificationService("", "", "", content(), nil)
	assert.NoError(t, svc.SendAppointmentReminder(context.Background(), appointment()))
}
