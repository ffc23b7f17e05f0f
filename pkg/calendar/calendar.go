// Package calendar mirrors scheduled jobs into an external calendar.
package calendar

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventDuration is the fixed length of synced events
const EventDuration = time.Hour

// UpcomingLimit is how many events UpcomingEvents returns
const UpcomingLimit = 5

// ErrNotConfigured is returned by the no-op scheduler
var ErrNotConfigured = errors.New("calendar is not configured")

// Event is a calendar entry
type Event struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Link        string    `json:"htmlLink,omitempty"`
}

// Scheduler creates and lists calendar events
type Scheduler interface {
	CreateEvent(ctx context.Context, ev Event) (*Event, error)
	UpcomingEvents(ctx context.Context) ([]Event, error)
}

// Normalize pins an event to one hour from its start, in UTC
func Normalize(ev Event) Event {
	ev.Start = ev.Start.UTC()
	ev.End = ev.Start.Add(EventDuration)
	return ev
}

// GoogleScheduler writes to Google Calendar with a service account
type GoogleScheduler struct {
	svc        *gcal.Service
	calendarID string
	now        func() time.Time
}

// NewGoogleScheduler builds a scheduler from base64 encoded service account
// JSON. An empty calendar id means "primary".
func NewGoogleScheduler(ctx context.Context, credsB64, calendarID string) (*GoogleScheduler, error) {
	creds, err := base64.StdEncoding.DecodeString(credsB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar credentials: %w", err)
	}
	return NewGoogleSchedulerWithOptions(ctx, calendarID,
		option.WithCredentialsJSON(creds),
		option.WithScopes(gcal.CalendarScope),
	)
}

// NewGoogleSchedulerWithOptions builds a scheduler from raw client options
func NewGoogleSchedulerWithOptions(ctx context.Context, calendarID string, opts ...option.ClientOption) (*GoogleScheduler, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleScheduler{svc: svc, calendarID: calendarID, now: time.Now}, nil
}

// CreateEvent inserts a normalized one-hour event
func (g *GoogleScheduler) CreateEvent(ctx context.Context, ev Event) (*Event, error) {
	ev = Normalize(ev)
	created, err := g.svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: "UTC"},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}
	ev.ID = created.Id
	ev.Link = created.HtmlLink
	return &ev, nil
}

// UpcomingEvents lists the next single events from now
func (g *GoogleScheduler) UpcomingEvents(ctx context.Context) ([]Event, error) {
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(g.now().UTC().Format(time.RFC3339)).
		MaxResults(UpcomingLimit).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	out := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, fromGoogle(item))
	}
	return out, nil
}

func fromGoogle(item *gcal.Event) Event {
	ev := Event{ID: item.Id, Summary: item.Summary, Description: item.Description, Link: item.HtmlLink}
	if item.Start != nil {
		ev.Start = parseDateTime(item.Start)
	}
	if item.End != nil {
		ev.End = parseDateTime(item.End)
	}
	return ev
}

// parseDateTime accepts timed and all-day values
func parseDateTime(dt *gcal.EventDateTime) time.Time {
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t.UTC()
		}
	}
	if dt.Date != "" {
		if t, err := time.Parse("2006-01-02", dt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Noop is used when no calendar credentials are configured
type Noop struct{}

func (Noop) CreateEvent(ctx context.Context, ev Event) (*Event, error) {
	return nil, ErrNotConfigured
}

func (Noop) UpcomingEvents(ctx context.Context) ([]Event, error) {
	return []Event{}, nil
}
