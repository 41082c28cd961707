package api

import (
	"context"
	"net/http"
)

// DeletePermanently removes files and folders bypassing the trash.
func (c *Client) DeletePermanently(ctx context.Context, ids []string) error {
	body := map[string]any{"ids": ids}

	return c.doJSON(ctx, http.MethodPost, "/v1/files/delete-permanent", body, nil)
}
