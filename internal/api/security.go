package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"drivego/internal/domain"
)

// VerifyPassword runs the authentication service's challenge-response exchange.
// Only a salted digest of the password ever leaves the client; the protocol
// internals belong to the remote service.
func (c *Client) VerifyPassword(ctx context.Context, password string) error {
	var challenge struct {
		ChallengeID string `json:"challengeId"`
		Nonce       string `json:"nonce"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/password/challenge", nil, &challenge); err != nil {
		return err
	}

	digest := sha256.Sum256([]byte(password))
	proofInput := append([]byte(challenge.Nonce), digest[:]...)
	proof := sha256.Sum256(proofInput)

	body := map[string]string{
		"challengeId": challenge.ChallengeID,
		"proof":       hex.EncodeToString(proof[:]),
	}

	return c.doJSON(ctx, http.MethodPost, "/v1/auth/password/verify", body, nil)
}

// InitiateEmailChange starts the two-step email change and returns the change
// token the OTP verification must present.
func (c *Client) InitiateEmailChange(ctx context.Context, newEmail string) (string, error) {
	var payload struct {
		EmailChangeToken string `json:"emailChangeToken"`
	}
	body := map[string]string{"newEmail": newEmail}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/account/email/initiate", body, &payload); err != nil {
		return "", err
	}

	return payload.EmailChangeToken, nil
}

func (c *Client) VerifyEmailChange(ctx context.Context, token, otp string) error {
	body := map[string]string{
		"token": token,
		"otp":   otp,
	}

	return c.doJSON(ctx, http.MethodPost, "/v1/account/email/verify", body, nil)
}

func (c *Client) SetupTOTP(ctx context.Context) (domain.TOTPEnrollment, error) {
	var payload struct {
		Secret string `json:"secret"`
		QRCode string `json:"qrCode"`
		URI    string `json:"uri"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/totp/setup", nil, &payload); err != nil {
		return domain.TOTPEnrollment{}, err
	}

	return domain.TOTPEnrollment(payload), nil
}

// VerifyTOTPSetup confirms enrollment with a 6-digit token and returns the
// one-time batch of recovery codes.
func (c *Client) VerifyTOTPSetup(ctx context.Context, token string) ([]string, error) {
	var payload struct {
		RecoveryCodes []string `json:"recoveryCodes"`
	}
	body := map[string]string{"token": token}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/totp/verify", body, &payload); err != nil {
		return nil, err
	}

	return payload.RecoveryCodes, nil
}

func (c *Client) DisableTOTP(ctx context.Context, token, recoveryCode string) error {
	body := map[string]string{}
	if token != "" {
		body["token"] = token
	}
	if recoveryCode != "" {
		body["recoveryCode"] = recoveryCode
	}

	return c.doJSON(ctx, http.MethodPost, "/v1/auth/totp/disable", body, nil)
}

// SessionList is a page of sessions plus the canonical current-session id.
type SessionList struct {
	Sessions         domain.PagedList[domain.Session]
	CurrentSessionID string
}

func (c *Client) GetSessions(ctx context.Context, page, pageSize int, showRevoked bool) (SessionList, error) {
	var payload struct {
		Sessions         []sessionPayload  `json:"sessions"`
		Pagination       paginationPayload `json:"pagination"`
		CurrentSessionID string            `json:"currentSessionId"`
	}
	path := "/v1/security/sessions?" + listQuery(page, pageSize, showRevoked)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return SessionList{}, err
	}

	sessions := make([]domain.Session, 0, len(payload.Sessions))
	for _, s := range payload.Sessions {
		sessions = append(sessions, domain.Session{
			ID:        s.ID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			CreatedAt: s.CreatedAt,
			Revoked:   s.Revoked,
			IsCurrent: s.IsCurrent,
		})
	}

	return SessionList{
		Sessions: domain.PagedList[domain.Session]{
			Items:      sessions,
			Page:       payload.Pagination.Page,
			TotalPages: payload.Pagination.TotalPages,
			Total:      payload.Pagination.Total,
		},
		CurrentSessionID: payload.CurrentSessionID,
	}, nil
}

func (c *Client) RevokeSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/security/sessions/"+url.PathEscape(sessionID), nil, nil)
}

// RevokeAllSessions revokes every session except the caller's own.
func (c *Client) RevokeAllSessions(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/security/sessions/revoke-all", nil, nil)
}

// DeviceList is a page of devices plus the canonical current-device id and the
// plan tier that gates renaming.
type DeviceList struct {
	Devices         domain.PagedList[domain.Device]
	CurrentDeviceID string
	Plan            domain.PlanTier
}

func (c *Client) GetDevices(ctx context.Context, page, pageSize int, showRevoked bool) (DeviceList, error) {
	var payload struct {
		Devices         []devicePayload   `json:"devices"`
		Pagination      paginationPayload `json:"pagination"`
		CurrentDeviceID string            `json:"currentDeviceId"`
		Plan            string            `json:"plan"`
	}
	path := "/v1/security/devices?" + listQuery(page, pageSize, showRevoked)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return DeviceList{}, err
	}

	devices := make([]domain.Device, 0, len(payload.Devices))
	for _, d := range payload.Devices {
		devices = append(devices, domain.Device{
			ID:         d.ID,
			Name:       d.DeviceName,
			OS:         d.OS,
			Browser:    d.Browser,
			LastActive: d.LastActive,
			Location:   d.Location,
			Revoked:    d.Revoked,
			IsCurrent:  d.IsCurrent,
		})
	}

	return DeviceList{
		Devices: domain.PagedList[domain.Device]{
			Items:      devices,
			Page:       payload.Pagination.Page,
			TotalPages: payload.Pagination.TotalPages,
			Total:      payload.Pagination.Total,
		},
		CurrentDeviceID: payload.CurrentDeviceID,
		Plan:            domain.PlanTier(payload.Plan),
	}, nil
}

func (c *Client) RevokeDevice(ctx context.Context, deviceID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/security/devices/"+url.PathEscape(deviceID), nil, nil)
}

func (c *Client) RenameDevice(ctx context.Context, deviceID, name string) error {
	body := map[string]string{"name": name}

	return c.doJSON(ctx, http.MethodPatch, "/v1/security/devices/"+url.PathEscape(deviceID), body, nil)
}

func (c *Client) GetSecurityEvents(ctx context.Context, limit, offset int) (domain.PagedList[domain.SecurityEvent], error) {
	var payload struct {
		Events     []securityEventPayload `json:"events"`
		Pagination paginationPayload      `json:"pagination"`
	}
	path := fmt.Sprintf("/v1/security/events?limit=%d&offset=%d", limit, offset)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return domain.PagedList[domain.SecurityEvent]{}, err
	}

	events := make([]domain.SecurityEvent, 0, len(payload.Events))
	for _, e := range payload.Events {
		events = append(events, domain.SecurityEvent{
			ID:        e.ID,
			Type:      e.EventType,
			UserAgent: e.UserAgent,
			IPAddress: e.IPAddress,
			Location:  e.Location,
			Status:    domain.SecurityEventStatus(e.Status),
			CreatedAt: e.CreatedAt,
		})
	}

	return domain.PagedList[domain.SecurityEvent]{
		Items:      events,
		Page:       payload.Pagination.Page,
		TotalPages: payload.Pagination.TotalPages,
		Total:      payload.Pagination.Total,
	}, nil
}

// ExportSecurityEventsCSV fetches the audit log in CSV form as a single large
// page, ready to be written to a file picked by the user.
func (c *Client) ExportSecurityEventsCSV(ctx context.Context, limit int) ([]byte, error) {
	path := fmt.Sprintf("/v1/security/events?limit=%d&offset=0&format=csv", limit)

	return c.doRaw(ctx, http.MethodGet, path, "", nil, map[string]string{"Accept": "text/csv"})
}

func (c *Client) WipeSecurityEvents(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/security/events", nil, nil)
}

func (c *Client) UpdateSecurityPreferences(ctx context.Context, prefs domain.SecurityPrefs) error {
	return c.doJSON(ctx, http.MethodPut, "/v1/security/preferences", securityPrefsPayload(prefs), nil)
}

func listQuery(page, pageSize int, showRevoked bool) string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("pageSize", strconv.Itoa(pageSize))
	values.Set("showRevoked", strconv.FormatBool(showRevoked))

	return values.Encode()
}
