// Package github adapts the GitHub REST API to the creator's Remote interface.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v45/github"
	"golang.org/x/oauth2"

	"pkt.systems/pslog"
	"pkt.systems/repostamp/schema"
)

// DefaultTimeout bounds each HTTP request when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	Token string
	// BaseURL and UploadURL select a GitHub Enterprise server. Both empty means github.com.
	BaseURL   string
	UploadURL string
	Timeout   time.Duration
	Logger    pslog.Logger
}

// Client talks to GitHub with a personal access token.
type Client struct {
	gh  *gh.Client
	log pslog.Logger

	selfMu    sync.Mutex
	selfLogin string
}

// New builds a token-authenticated client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("%w: token is required", schema.ErrCredentialUnavailable)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	httpClient.Timeout = timeout

	var client *gh.Client
	if strings.TrimSpace(opts.BaseURL) == "" && strings.TrimSpace(opts.UploadURL) == "" {
		client = gh.NewClient(httpClient)
	} else {
		upload := opts.UploadURL
		if strings.TrimSpace(upload) == "" {
			upload = opts.BaseURL
		}
		var err error
		client, err = gh.NewEnterpriseClient(opts.BaseURL, upload, httpClient)
		if err != nil {
			return nil, fmt.Errorf("github enterprise client: %w", err)
		}
	}
	logger := opts.Logger
	if logger != nil {
		logger = logger.With("github", client.BaseURL.String())
	}
	return &Client{gh: client, log: logger}, nil
}

// Authenticated returns the login that owns the token.
func (c *Client) Authenticated(ctx context.Context) (string, error) {
	c.selfMu.Lock()
	defer c.selfMu.Unlock()
	if c.selfLogin != "" {
		return c.selfLogin, nil
	}
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		c.warn(ctx, "github authenticated user failed", err)
		return "", classify(resp, err, schema.ErrRemoteCall)
	}
	c.selfLogin = user.GetLogin()
	c.debug(ctx, "github authenticated user ok", "login", c.selfLogin)
	return c.selfLogin, nil
}

// LookupOrganization implements core.Remote.
func (c *Client) LookupOrganization(ctx context.Context, name string) (schema.Destination, error) {
	org, resp, err := c.gh.Organizations.Get(ctx, name)
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			c.debug(ctx, "github organization miss", "org", name)
			return schema.Destination{}, fmt.Errorf("%w: organization %s", schema.ErrAccountNotFound, name)
		}
		c.warn(ctx, "github organization lookup failed", err)
		return schema.Destination{}, classify(resp, err, schema.ErrRemoteCall)
	}
	return schema.Destination{Login: org.GetLogin(), Kind: schema.DestinationOrganization}, nil
}

// LookupUser implements core.Remote. An empty name returns the authenticated user.
func (c *Client) LookupUser(ctx context.Context, name string) (schema.Destination, error) {
	self, err := c.Authenticated(ctx)
	if err != nil {
		return schema.Destination{}, err
	}
	if name == "" || strings.EqualFold(name, self) {
		return schema.Destination{Login: self, Kind: schema.DestinationUser, Authenticated: true}, nil
	}
	user, resp, err := c.gh.Users.Get(ctx, name)
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			c.debug(ctx, "github user miss", "user", name)
			return schema.Destination{}, fmt.Errorf("%w: user %s", schema.ErrAccountNotFound, name)
		}
		c.warn(ctx, "github user lookup failed", err)
		return schema.Destination{}, classify(resp, err, schema.ErrRemoteCall)
	}
	return schema.Destination{Login: user.GetLogin(), Kind: schema.DestinationUser}, nil
}

// CreateRepository implements core.Remote. Users other than the token owner cannot
// receive repositories.
func (c *Client) CreateRepository(ctx context.Context, dest schema.Destination, req schema.CreateRepoRequest) (schema.RepoRef, error) {
	owner := ""
	switch {
	case dest.Kind == schema.DestinationOrganization:
		owner = dest.Login
	case !dest.Authenticated:
		return schema.RepoRef{}, fmt.Errorf("%w: cannot create repositories for user %s with another user's token", schema.ErrRemoteCall, dest.Login)
	}
	repo := &gh.Repository{
		Name:     gh.String(req.Name),
		Private:  gh.Bool(req.Private),
		AutoInit: gh.Bool(req.AutoInit),
	}
	if req.Description != "" {
		repo.Description = gh.String(req.Description)
	}
	if req.Template != "" {
		repo.GitignoreTemplate = gh.String(req.Template)
	}
	created, resp, err := c.gh.Repositories.Create(ctx, owner, repo)
	if err != nil {
		c.warn(ctx, "github repo create failed", err, "name", req.Name)
		return schema.RepoRef{}, classify(resp, err, schema.ErrRemoteCall)
	}
	ref := schema.RepoRef{
		Owner:    created.GetOwner().GetLogin(),
		Name:     created.GetName(),
		FullName: created.GetFullName(),
		URL:      created.GetHTMLURL(),
	}
	if ref.Owner == "" {
		ref.Owner = dest.Login
	}
	if ref.Name == "" {
		ref.Name = req.Name
	}
	c.debug(ctx, "github repo create ok", "repo", ref.FullName)
	return ref, nil
}

// AddCollaborator implements core.Remote.
func (c *Client) AddCollaborator(ctx context.Context, repo schema.RepoRef, login string, role schema.Role) error {
	_, resp, err := c.gh.Repositories.AddCollaborator(ctx, repo.Owner, repo.Name, login, &gh.RepositoryAddCollaboratorOptions{
		Permission: string(role),
	})
	if err == nil {
		c.debug(ctx, "github collaborator add ok", "repo", repo.Name, "login", login, "role", role)
		return nil
	}
	switch status := statusOf(resp, err); {
	case status == http.StatusNotFound, status == http.StatusUnprocessableEntity && namesUser(err, login):
		return fmt.Errorf("%w: %s: %v", schema.ErrUnknownCollaborator, login, err)
	}
	c.warn(ctx, "github collaborator add failed", err, "repo", repo.Name, "login", login)
	return classify(resp, err, schema.ErrRemoteCall)
}

func statusOf(resp *gh.Response, err error) int {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return 0
}

// namesUser reports whether a validation failure concerns the user field or names
// login as a whole word in a detail message.
func namesUser(err error, login string) bool {
	var errResp *gh.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}
	for _, detail := range errResp.Errors {
		if strings.EqualFold(detail.Field, "user") || hasWord(detail.Message, login) {
			return true
		}
	}
	return false
}

// hasWord reports whether word occurs in text delimited by characters that cannot
// appear in a login.
func hasWord(text, word string) bool {
	if word == "" {
		return false
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	for _, field := range fields {
		if strings.EqualFold(field, word) {
			return true
		}
	}
	return false
}

func classify(resp *gh.Response, err error, sentinel error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	if status := statusOf(resp, err); status != 0 {
		return fmt.Errorf("%w: status %d: %v", sentinel, status, err)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func (c *Client) logger(ctx context.Context) pslog.Logger {
	if c.log != nil {
		return c.log
	}
	return pslog.Ctx(ctx)
}

func (c *Client) debug(ctx context.Context, msg string, kv ...any) {
	c.logger(ctx).Debug(msg, kv...)
}

func (c *Client) warn(ctx context.Context, msg string, err error, kv ...any) {
	c.logger(ctx).Warn(msg, append(kv, "err", err)...)
}
