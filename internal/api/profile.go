package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"drivego/internal/domain"
)

// ProfileUpdate carries the mutable profile fields. Nil fields are untouched.
type ProfileUpdate struct {
	DisplayName     *string `json:"displayName,omitempty"`
	AvatarURL       *string `json:"avatarUrl,omitempty"`
	Theme           *string `json:"theme,omitempty"`
	SessionDuration *string `json:"sessionDuration,omitempty"`
}

func (c *Client) GetProfile(ctx context.Context) (domain.Profile, error) {
	var payload profilePayload
	if err := c.doJSON(ctx, http.MethodGet, "/v1/profile", nil, &payload); err != nil {
		return domain.Profile{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (domain.Profile, error) {
	var payload profilePayload
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/profile", update, &payload); err != nil {
		return domain.Profile{}, err
	}

	return payload.toDomain(), nil
}

// UploadAvatar sends the image as multipart form data. The sha256 content hash
// doubles as an idempotency key so a retried upload is deduplicated server-side.
func (c *Client) UploadAvatar(ctx context.Context, filename string, image []byte) (string, error) {
	sum := sha256.Sum256(image)
	contentHash := hex.EncodeToString(sum[:])

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	raw, err := c.doRaw(ctx, http.MethodPost, "/v1/profile/avatar", writer.FormDataContentType(), &form, map[string]string{
		"X-Content-Hash": contentHash,
		"Accept":         "application/json",
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := decodeRawEnvelope(raw, &payload); err != nil {
		return "", err
	}

	return payload.AvatarURL, nil
}

func (c *Client) GetNotificationPreferences(ctx context.Context) (domain.NotificationPrefs, error) {
	var payload notificationPrefsPayload
	if err := c.doJSON(ctx, http.MethodGet, "/v1/notifications/preferences", nil, &payload); err != nil {
		return domain.NotificationPrefs{}, err
	}

	return domain.NotificationPrefs(payload), nil
}

func (c *Client) UpdateNotificationPreferences(ctx context.Context, prefs domain.NotificationPrefs) error {
	return c.doJSON(ctx, http.MethodPut, "/v1/notifications/preferences", notificationPrefsPayload(prefs), nil)
}

func (c *Client) DeleteAccount(ctx context.Context, reason, details string) error {
	body := map[string]string{
		"reason":  reason,
		"details": details,
	}

	return c.doJSON(ctx, http.MethodPost, "/v1/account/delete", body, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
}
