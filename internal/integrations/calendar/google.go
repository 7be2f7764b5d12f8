package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voiceagent/internal/domain"
	"voiceagent/internal/repository"
)

const (
	tokenEndpoint = "https://oauth2.googleapis.com/token"
	calendarAPI   = "https://www.googleapis.com/calendar/v3"

	// Refresh a little early so a token never expires mid-request.
	tokenExpirySlack = 2 * time.Minute
)

var ErrNotConnected = errors.New("business has no google calendar credential")

// GoogleClient implements calendar sync against the Google Calendar REST API.
// Access tokens are refreshed from the stored refresh token on demand and
// written back so other instances reuse them.
type GoogleClient struct {
	credentials  *repository.OAuthCredentialRepository
	clientID     string
	clientSecret string
	http         *http.Client
}

func NewGoogleClient(credentials *repository.OAuthCredentialRepository, clientID, clientSecret string) *GoogleClient {
	return &GoogleClient{
		credentials:  credentials,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

func buildEvent(business *domain.Business, b *domain.Booking, c *domain.Customer) eventBody {
	summary := fmt.Sprintf("Reservation: %s (%d guests)", c.Name, b.PartySize)
	if c.Name == "" {
		summary = fmt.Sprintf("Reservation (%d guests)", b.PartySize)
	}
	description := fmt.Sprintf("Phone: %s", c.Phone)
	if b.Notes != "" {
		description += "\nNotes: " + b.Notes
	}
	return eventBody{
		Summary:     summary,
		Description: description,
		Start:       eventTime{DateTime: b.StartTime.UTC().Format(time.RFC3339), TimeZone: business.Timezone},
		End:         eventTime{DateTime: b.EndTime.UTC().Format(time.RFC3339), TimeZone: business.Timezone},
	}
}

func (g *GoogleClient) CreateEvent(ctx context.Context, business *domain.Business, b *domain.Booking, c *domain.Customer) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(calendarID(business)))
	if err := g.call(ctx, business, http.MethodPost, path, buildEvent(business, b, c), &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (g *GoogleClient) UpdateEvent(ctx context.Context, business *domain.Business, b *domain.Booking, c *domain.Customer) error {
	path := fmt.Sprintf("/calendars/%s/events/%s",
		url.PathEscape(calendarID(business)), url.PathEscape(b.ExternalEventID))
	return g.call(ctx, business, http.MethodPut, path, buildEvent(business, b, c), nil)
}

func (g *GoogleClient) DeleteEvent(ctx context.Context, business *domain.Business, externalEventID string) error {
	path := fmt.Sprintf("/calendars/%s/events/%s",
		url.PathEscape(calendarID(business)), url.PathEscape(externalEventID))
	err := g.call(ctx, business, http.MethodDelete, path, nil, nil)
	// Deleting an already-deleted event is success for our purposes.
	var apiErr *apiError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusGone) {
		return nil
	}
	return err
}

func calendarID(business *domain.Business) string {
	if business.CalendarID != "" {
		return business.CalendarID
	}
	return "primary"
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("google calendar api status %d: %s", e.Status, e.Body)
}

func (g *GoogleClient) call(ctx context.Context, business *domain.Business, method, path string, body, out any) error {
	token, err := g.accessToken(ctx, business.ID)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, calendarAPI+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// accessToken returns a live token for the business, refreshing when the
// cached one is missing or about to expire.
func (g *GoogleClient) accessToken(ctx context.Context, businessID int64) (string, error) {
	cred, err := g.credentials.GetByBusiness(ctx, businessID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrNotConnected
		}
		return "", err
	}

	if cred.AccessToken != "" && cred.TokenExpiry != nil &&
		time.Now().Add(tokenExpirySlack).Before(*cred.TokenExpiry) {
		return cred.AccessToken, nil
	}
	return g.refresh(ctx, cred)
}

func (g *GoogleClient) refresh(ctx context.Context, cred *domain.OAuthCredential) (string, error) {
	form := url.Values{
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"refresh_token": {cred.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", errors.New("token refresh returned empty access_token")
	}

	expiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second).UTC()
	cred.AccessToken = token.AccessToken
	cred.TokenExpiry = &expiry
	cred.UpdatedAt = time.Now().UTC()
	if err := g.credentials.Save(ctx, cred); err != nil {
		// The token still works for this request even if caching it failed.
		return token.AccessToken, nil
	}
	return token.AccessToken, nil
}
