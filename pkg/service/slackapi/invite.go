package slackapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/utils/safe"
)

// Invite sends a users.admin.invite call for the given email. A non-empty
// channelID scopes the invite to a single channel, marking it restricted
// and the user active. The raw ok/error/needed fields are returned for
// the caller to classify; err covers transport failures, non-200 status
// and malformed payloads only.
//
// This endpoint is undocumented and its failure modes ride on a 200
// response, so the body is decoded regardless of the ok flag.
func (c *Client) Invite(ctx context.Context, email, channelID string) (*model.InviteResult, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("token", c.token)
	if channelID != "" {
		form.Set("channels", channelID)
		form.Set("ultra_restricted", "1")
		form.Set("set_active", "true")
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inviteURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build invite request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call users.admin.invite")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status from users.admin.invite",
			goerr.V("status", resp.StatusCode))
	}

	var result model.InviteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode users.admin.invite response")
	}

	return &result, nil
}
