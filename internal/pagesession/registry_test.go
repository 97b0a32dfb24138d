package pagesession

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/internal/observability/metrics"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) NewConverser() chat.Converser {
	return chat.ConverserFunc(func(_ context.Context, msg string, lang i18n.Language) string {
		return lang.String() + ":" + msg
	})
}

type submitRecorder struct {
	mu        sync.Mutex
	languages []string
}

func (s *submitRecorder) factory(language func() string) booking.Submitter {
	return booking.SubmitterFunc(func(context.Context, booking.Form) error {
		s.mu.Lock()
		s.languages = append(s.languages, language())
		s.mu.Unlock()
		return nil
	})
}

func newTestRegistry(t *testing.T, rec *submitRecorder) *Registry {
	t.Helper()
	if rec == nil {
		rec = &submitRecorder{}
	}
	return NewRegistry(Config{
		TTL:          time.Minute,
		Submitters:   rec.factory,
		ChatProvider: echoProvider{},
		Pipeline:     booking.PipelineConfig{RevertDelay: 20 * time.Millisecond},
	})
}

func TestCreate_SeedsGreetingInLanguage(t *testing.T) {
	r := newTestRegistry(t, nil)

	s := r.Create(i18n.English)
	snap := s.Snapshot()

	assert.Equal(t, i18n.English, snap.Language)
	require.Len(t, snap.Chat.Transcript, 1)
	assert.Equal(t, i18n.DefaultCatalog.Text(i18n.English, i18n.KeyChatHelp), snap.Chat.Transcript[0].Text)
	assert.Equal(t, booking.StatusIdle, snap.Booking.Status)
	assert.Equal(t, "Book Appointment", snap.ButtonLabel)
	assert.Equal(t, "Full Name", snap.Strings[i18n.KeyFullName])

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestCreate_InvalidLanguageUsesDefault(t *testing.T) {
	r := newTestRegistry(t, nil)
	assert.Equal(t, i18n.Korean, r.Create("").Localizer.Language())
}

func TestSessionsAreIsolated(t *testing.T) {
	r := newTestRegistry(t, nil)
	a := r.Create(i18n.Korean)
	b := r.Create(i18n.Korean)

	a.Localizer.Toggle()
	require.NoError(t, a.Booking.UpdateField("fullName", "A"))

	assert.Equal(t, i18n.Korean, b.Localizer.Language())
	assert.Empty(t, b.Booking.State().Form.FullName)
}

func TestSubmitterSeesActiveLanguage(t *testing.T) {
	rec := &submitRecorder{}
	r := newTestRegistry(t, rec)
	s := r.Create(i18n.Korean)
	require.NoError(t, s.Localizer.SetLanguage(i18n.English))

	for field, value := range map[string]string{"fullName": "n", "phone": "1", "email": "e", "consent": "true"} {
		require.NoError(t, s.Booking.UpdateField(field, value))
	}
	_, err := s.Booking.AttemptSubmit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"en"}, rec.languages)
}

func TestDelete_TearsDown(t *testing.T) {
	r := newTestRegistry(t, nil)
	s := r.Create(i18n.Korean)
	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, r.Delete(s.ID))
	assert.ErrorIs(t, r.Delete(s.ID), ErrNotFound)
	_, err := r.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Chat.SendTurn(context.Background(), "hi")
	assert.ErrorIs(t, err, chat.ErrClosed)
	assert.ErrorIs(t, s.Booking.UpdateField("phone", "1"), booking.ErrClosed)

	evt, ok := <-events
	require.True(t, ok)
	assert.Equal(t, EventClosed, evt.Type)
	_, ok = <-events
	assert.False(t, ok)
}

func TestSweep_ExpiresIdleSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(Config{
		TTL:          time.Minute,
		Submitters:   (&submitRecorder{}).factory,
		ChatProvider: echoProvider{},
		Metrics:      metrics.NewSessionMetrics(reg),
	})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale := r.Create(i18n.Korean)
	now = now.Add(45 * time.Second)
	fresh := r.Create(i18n.Korean)
	now = now.Add(30 * time.Second)
	_, err := r.Get(fresh.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Sweep())
	_, err = r.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, r.Len())

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		m := f.GetMetric()[0]
		if m.GetGauge() != nil {
			values[f.GetName()] = m.GetGauge().GetValue()
		} else {
			values[f.GetName()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), values["medibook_sessions_active"])
	assert.Equal(t, float64(1), values["medibook_sessions_expired_total"])
}

func TestRun_ClosesOnCancel(t *testing.T) {
	r := newTestRegistry(t, nil)
	s := r.Create(i18n.Korean)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	<-done
	assert.Zero(t, r.Len())
	assert.ErrorIs(t, s.Booking.UpdateField("phone", "1"), booking.ErrClosed)
}

func TestEvents(t *testing.T) {
	r := newTestRegistry(t, nil)
	s := r.Create(i18n.Korean)
	events, cancel := s.Subscribe()
	defer cancel()

	_, err := s.Chat.SendTurn(context.Background(), "hello")
	require.NoError(t, err)
	s.Localizer.Toggle()

	var got []EventType
	for len(got) < 5 {
		select {
		case evt := <-events:
			got = append(got, evt.Type)
			if evt.Type == EventMessage && evt.Message.Role == chat.RoleModel {
				assert.Equal(t, "ko:hello", evt.Message.Text)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	assert.Equal(t, []EventType{EventMessage, EventTyping, EventMessage, EventTyping, EventLanguage}, got)
}

func TestEvents_BookingStatus(t *testing.T) {
	r := newTestRegistry(t, nil)
	s := r.Create(i18n.English)
	events, cancel := s.Subscribe()
	defer cancel()

	for field, value := range map[string]string{"fullName": "n", "phone": "1", "email": "e", "consent": "yes"} {
		require.NoError(t, s.Booking.UpdateField(field, value))
	}
	_, err := s.Booking.AttemptSubmit(context.Background())
	require.NoError(t, err)

	var labels []string
	for len(labels) < 3 {
		select {
		case evt := <-events:
			require.Equal(t, EventStatus, evt.Type)
			labels = append(labels, evt.ButtonLabel)
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", labels)
		}
	}
	assert.Equal(t, []string{"Book Appointment", "Booked Successfully!", "Book Appointment"}, labels)
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	h := newHub()
	_, cancel := h.subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer; i++ {
		assert.Zero(t, h.publish(Event{Type: EventTyping}))
	}
	assert.Equal(t, 1, h.publish(Event{Type: EventTyping}))
}
