package ai

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"aira/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedGenerator struct {
	replies []string
	err     error
	prompts []string
	calls   int
}

func (g *scriptedGenerator) GenerateText(_ context.Context, _ []models.ChatMessage, systemPrompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, systemPrompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}
	out := g.replies[0]
	g.replies = g.replies[1:]
	return out, nil
}

func TestParseEntities(t *testing.T) {
	raw := "```json\n{\"patient_name\": \" Asha Menon \", \"phone\": 919876543210, \"email\": null, " +
		"\"appointment_date\": \"2030-01-10\", \"appointment_time\": \"3:30 PM\", \"reason\": \"\", \"mood\": \"happy\"}\n```"

	entities, err := parseEntities(raw)
	require.NoError(t, err)
	assert.Equal(t, models.Entities{
		models.FieldPatientName:     "Asha Menon",
		models.FieldPhone:           "919876543210",
		models.FieldAppointmentDate: "2030-01-10",
		models.FieldAppointmentTime: "15:30",
	}, entities)
}

func TestParseEntitiesDropsUnparsableDateTime(t *testing.T) {
	entities, err := parseEntities(`{"appointment_date": "next friday", "appointment_time": "evening"}`)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestParseEntitiesMalformed(t *testing.T) {
	_, err := parseEntities("I could not find anything")
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = parseEntities(`{"patient_name": "Asha"`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestNormalizeIntent(t *testing.T) {
	assert.Equal(t, models.IntentBook, normalizeIntent("book_appointment"))
	assert.Equal(t, models.IntentCancel, normalizeIntent("  Cancel_Appointment.\n"))
	assert.Equal(t, models.IntentEmergency, normalizeIntent("Intent: emergency"))
	assert.Equal(t, models.IntentOther, normalizeIntent("wants to chat about cricket"))
	assert.Equal(t, models.IntentOther, normalizeIntent(""))
	assert.Equal(t, models.IntentBook, normalizeIntent("not a greeting, book_appointment"))
	assert.Equal(t, models.IntentReschedule, normalizeIntent("reschedule_appointment (not an emergency)"))
	assert.Equal(t, models.IntentInquiry, normalizeIntent("**inquiry**: asks about fees"))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	ml := "എനിക്ക് നാളെ ഒരു അപ്പോയിന്റ്മെന്റ് വേണം"
	out := truncate(ml, 5)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, string([]rune(ml)[:5])+"...", out)
	assert.Equal(t, "short", truncate("short", 80))
}

func TestModelService(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		`{"patient_name": "Ravi", "appointment_date": "2030-01-11"}`,
		"reschedule_appointment",
		"Sure, what time?",
	}}
	svc := NewModelService(gen, nil, zap.NewNop(), time.UTC)
	svc.now = func() time.Time { return time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	entities, err := svc.ExtractEntities(ctx, "I'm Ravi, tomorrow please", "en")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", entities[models.FieldPatientName])
	assert.Contains(t, gen.prompts[0], "Current date: 2030-01-10")

	intent, err := svc.DetectIntent(ctx, "move my appointment", "en")
	require.NoError(t, err)
	assert.Equal(t, models.IntentReschedule, intent)

	reply, err := svc.Generate(ctx, []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}, "system")
	require.NoError(t, err)
	assert.Equal(t, "Sure, what time?", reply)
}

func TestModelServicePropagatesErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	svc := NewModelService(&scriptedGenerator{err: boom}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.ExtractEntities(ctx, "hello", "en")
	assert.ErrorIs(t, err, boom)
	_, err = svc.DetectIntent(ctx, "hello", "en")
	assert.ErrorIs(t, err, boom)
	_, err = svc.Generate(ctx, []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}}, "")
	assert.ErrorIs(t, err, boom)
}

func TestBreakerGeneratorOpens(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("upstream 500")}
	b := NewBreakerGenerator(gen, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := b.GenerateText(ctx, nil, "")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrModelUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.GenerateText(ctx, nil, "")
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, 5, gen.calls)
}

func TestBreakerGeneratorPassesThrough(t *testing.T) {
	b := NewBreakerGenerator(&scriptedGenerator{replies: []string{"hello"}}, nil)
	out, err := b.GenerateText(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRedisSnapshotStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisSnapshotStore(client, time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap := &models.SessionSnapshot{
		SessionID: "s1",
		State: models.ConversationState{
			Stage:         models.StageCollectingInfo,
			CollectedData: map[string]string{models.FieldPatientName: "Asha"},
			Language:      "ml",
		},
		Turns: 2,
	}
	require.NoError(t, store.Save(ctx, snap))
	assert.Equal(t, time.Hour, mr.TTL(sessionSnapshotPrefix+"s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StageCollectingInfo, got.State.Stage)
	assert.Equal(t, "Asha", got.State.CollectedData[models.FieldPatientName])
	assert.Equal(t, 2, got.Turns)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
