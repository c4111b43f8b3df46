package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	googlecalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kiloutout/service-booking/internal/domain/settings"
	"github.com/kiloutout/service-booking/internal/domain/shared"
)

const defaultTimeZone = "Europe/Paris"

// GoogleClient talks to the Google Calendar API using the OAuth tokens
// stored in Settings.
type GoogleClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
}

// NewGoogleClient creates a calendar client with the OAuth application
// credentials.
func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
	}
}

func (g *GoogleClient) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.clientID,
		ClientSecret: g.clientSecret,
		RedirectURL:  g.redirectURL,
		Scopes:       []string{googlecalendar.CalendarEventsScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
}

// AuthURL returns the Google consent page URL for connecting the
// calendar. Offline access is requested so a refresh token is issued.
func (g *GoogleClient) AuthURL(state string) string {
	return g.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for OAuth tokens.
func (g *GoogleClient) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := g.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

func (g *GoogleClient) service(ctx context.Context, cfg *settings.Settings) (*googlecalendar.Service, error) {
	if !cfg.CalendarConnected() {
		return nil, shared.NewValidationError("calendar is not connected")
	}

	token := &oauth2.Token{
		AccessToken:  cfg.GoogleAccessToken,
		RefreshToken: cfg.GoogleRefreshToken,
	}
	if cfg.GoogleTokenExpiry != nil {
		token.Expiry = *cfg.GoogleTokenExpiry
	}

	source := g.oauthConfig().TokenSource(ctx, token)
	svc, err := googlecalendar.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar service: %w", err)
	}
	return svc, nil
}

func calendarID(cfg *settings.Settings) string {
	if cfg.CalendarID != "" {
		return cfg.CalendarID
	}
	return "primary"
}

func buildEvent(ev Event) (*googlecalendar.Event, error) {
	start, err := combineDateTime(ev.RequestedDate, ev.RequestedTime)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(ev.DurationHours * float64(time.Hour)))

	description := fmt.Sprintf("Client : %s\nAdresse : %s, %s %s",
		ev.CustomerName, ev.Address, ev.PostalCode, ev.City)
	if ev.Notes != "" {
		description += "\nNotes : " + ev.Notes
	}

	return &googlecalendar.Event{
		Summary:     fmt.Sprintf("%s - %s", ev.ServiceName, ev.CustomerName),
		Description: description,
		Location:    fmt.Sprintf("%s, %s %s, France", ev.Address, ev.PostalCode, ev.City),
		Start: &googlecalendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: defaultTimeZone,
		},
		End: &googlecalendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: defaultTimeZone,
		},
	}, nil
}

func combineDateTime(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, shared.NewValidationError("requested time must be HH:MM")
	}
	loc, err := time.LoadLocation(defaultTimeZone)
	if err != nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, loc), nil
}

// CreateEvent inserts the event and returns the Google event id.
func (g *GoogleClient) CreateEvent(ctx context.Context, cfg *settings.Settings, ev Event) (string, error) {
	svc, err := g.service(ctx, cfg)
	if err != nil {
		return "", err
	}
	body, err := buildEvent(ev)
	if err != nil {
		return "", err
	}
	created, err := svc.Events.Insert(calendarID(cfg), body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent rewrites an existing event.
func (g *GoogleClient) UpdateEvent(ctx context.Context, cfg *settings.Settings, eventID string, ev Event) error {
	svc, err := g.service(ctx, cfg)
	if err != nil {
		return err
	}
	body, err := buildEvent(ev)
	if err != nil {
		return err
	}
	if _, err := svc.Events.Update(calendarID(cfg), eventID, body).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes the event. A 404 or 410 from the API means the event
// is already gone and is not an error.
func (g *GoogleClient) DeleteEvent(ctx context.Context, cfg *settings.Settings, eventID string) error {
	svc, err := g.service(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(calendarID(cfg), eventID).Context(ctx).Do(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
			return nil
		}
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}
