package slackapi

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
)

const (
	// pageLimit is the service-imposed ceiling on listing page size
	pageLimit = 800
	// callTimeout bounds the form-encoded invite and captcha style calls
	callTimeout = 10 * time.Second
)

// Client provides access to the Slack Web API for roster and invite
// operations
type Client struct {
	api       *slack.Client
	token     string
	workspace string
	pageDelay time.Duration
	httpc     *http.Client
	apiURL    string
	inviteURL string
}

// Option is a functional option for client configuration
type Option func(*Client)

// WithPageDelay sets the delay awaited between listing pages
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		c.pageDelay = d
	}
}

// WithHTTPClient replaces the HTTP client used for non-API-method calls
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithAPIURL overrides the Slack API base URL
func WithAPIURL(u string) Option {
	return func(c *Client) {
		c.apiURL = u
	}
}

// WithInviteURL overrides the users.admin.invite endpoint URL
func WithInviteURL(u string) Option {
	return func(c *Client) {
		c.inviteURL = u
	}
}

// New creates a Slack API client for the given workspace. The token must
// belong to an admin account for invite calls to succeed.
func New(token, workspace string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("Slack API token is required")
	}
	if workspace == "" {
		return nil, goerr.New("Slack workspace name is required")
	}

	c := &Client{
		token:     token,
		workspace: workspace,
		httpc:     &http.Client{Timeout: callTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	if c.inviteURL == "" {
		c.inviteURL = fmt.Sprintf("https://%s.slack.com/api/users.admin.invite", c.workspace)
	}

	return c, nil
}

// MemberPages returns the lazy page sequence of the full member listing,
// presence included. A yielded error does not advance the cursor, so
// continuing the loop retries the same page; rate limiting surfaces as
// *slack.RateLimitedError with the service-supplied retry-after attached.
func (c *Client) MemberPages(ctx context.Context) iter.Seq2[[]model.Member, error] {
	pager := c.api.GetUsersPaginated(
		slack.GetUsersOptionLimit(pageLimit),
		slack.GetUsersOptionPresence(true),
	)

	return func(yield func([]model.Member, error) bool) {
		for {
			next, err := pager.Next(ctx)
			if next.Done(err) {
				return
			}
			if err != nil {
				if !yield(nil, goerr.Wrap(err, "failed to fetch member page")) {
					return
				}
				continue
			}
			pager = next

			members := make([]model.Member, len(pager.Users))
			for i, u := range pager.Users {
				members[i] = model.Member{
					ID:       u.ID,
					IsBot:    u.IsBot,
					Deleted:  u.Deleted,
					Presence: u.Presence,
				}
			}
			if !yield(members, nil) {
				return
			}

			if err := waitPageDelay(ctx, c.pageDelay); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// ListChannels retrieves the full channel listing through the paginated
// fetcher. The listing aborts on the first error; the caller retries the
// whole fetch if needed.
func (c *Client) ListChannels(ctx context.Context) ([]model.Channel, error) {
	return Collect(ctx, c.pageDelay, func(ctx context.Context, cursor string) ([]model.Channel, string, error) {
		convs, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Types:           []string{"public_channel"},
			ExcludeArchived: true,
			Limit:           pageLimit,
			Cursor:          cursor,
		})
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to list conversations")
		}

		channels := make([]model.Channel, len(convs))
		for i, conv := range convs {
			channels[i] = model.Channel{
				ID:   conv.ID,
				Name: conv.Name,
			}
		}
		return channels, next, nil
	})
}

// TeamInfo retrieves the organization profile. The logo URL is omitted
// when the workspace uses the default icon.
func (c *Client) TeamInfo(ctx context.Context) (*model.OrgProfile, error) {
	info, err := c.api.GetTeamInfoContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get team info")
	}
	if info.Name == "" {
		return nil, goerr.New("team info response carries no name")
	}

	profile := &model.OrgProfile{Name: info.Name}
	if isDefault, _ := info.Icon["image_default"].(bool); !isDefault {
		if logo, ok := info.Icon["image_132"].(string); ok {
			profile.LogoURL = logo
		}
	}
	return profile, nil
}
