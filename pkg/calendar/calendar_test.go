package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func setupTestScheduler(t *testing.T, handler http.HandlerFunc) *GoogleScheduler {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogleSchedulerWithOptions(context.Background(), "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return g
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, loc)
	ev := Normalize(Event{Start: start, End: start.Add(8 * time.Hour)})

	assert.Equal(t, time.UTC, ev.Start.Location())
	assert.Equal(t, 14, ev.Start.Hour())
	assert.Equal(t, time.Hour, ev.End.Sub(ev.Start))
}

func TestGoogleScheduler_CreateEvent(t *testing.T) {
	var got gcal.Event
	var path string
	g := setupTestScheduler(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gcal.Event{Id: "evt_1", HtmlLink: "https://calendar.test/evt_1"})
	})

	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	ev, err := g.CreateEvent(context.Background(), Event{Summary: "Panel upgrade", Description: "Client: Acme", Start: start, End: start.Add(48 * time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, "/calendars/primary/events", path)
	assert.Equal(t, "Panel upgrade", got.Summary)
	assert.Equal(t, "2024-03-01T09:30:00Z", got.Start.DateTime)
	assert.Equal(t, "2024-03-01T10:30:00Z", got.End.DateTime)
	assert.Equal(t, "UTC", got.Start.TimeZone)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, start.Add(time.Hour), ev.End)
}

func TestGoogleScheduler_CreateEventError(t *testing.T) {
	g := setupTestScheduler(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	})
	_, err := g.CreateEvent(context.Background(), Event{Summary: "x", Start: time.Now()})
	assert.Error(t, err)
}

func TestGoogleScheduler_UpcomingEvents(t *testing.T) {
	var query map[string][]string
	g := setupTestScheduler(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gcal.Events{Items: []*gcal.Event{
			{Id: "a", Summary: "Inspection", Start: &gcal.EventDateTime{DateTime: "2024-03-02T15:00:00Z"}, End: &gcal.EventDateTime{DateTime: "2024-03-02T16:00:00Z"}},
			{Id: "b", Summary: "Holiday", Start: &gcal.EventDateTime{Date: "2024-03-04"}},
		}})
	})

	events, err := g.UpcomingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Inspection", events[0].Summary)
	assert.Equal(t, 15, events[0].Start.Hour())
	assert.Equal(t, 4, events[1].Start.Day())

	assert.Equal(t, []string{"5"}, query["maxResults"])
	assert.Equal(t, []string{"true"}, query["singleEvents"])
	assert.Equal(t, []string{"startTime"}, query["orderBy"])
}

func TestNewGoogleScheduler_BadCredentials(t *testing.T) {
	_, err := NewGoogleScheduler(context.Background(), "%%%not-base64", "")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	_, err := Noop{}.CreateEvent(context.Background(), Event{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	events, err := Noop{}.UpcomingEvents(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, events)
}
