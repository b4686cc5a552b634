package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/google/uuid"

	"pkt.systems/pslog"
	"pkt.systems/repostamp/internal/logx"
	"pkt.systems/repostamp/schema"
)

// StartRequest describes one bulk creation run.
type StartRequest struct {
	Count       int
	Destination string
	Names       NameGenerator
	// Collaborators holds one list per repository. Nil means no collaborators.
	Collaborators [][]string
	Role          schema.Role
	Private       bool
	Template      string
	// OnRepo is called after each repository and its collaborators are processed.
	OnRepo func(schema.RepoResult)
}

// Creator drives repository creation against a Remote.
type Creator struct {
	cfg      schema.RunConfig
	remote   Remote
	log      *LogSink
	logger   pslog.Logger
	newRunID func() string
}

// NewCreator constructs a Creator.
func NewCreator(cfg schema.RunConfig, deps CreatorDeps) (*Creator, error) {
	normalized, err := schema.NormalizeRunConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.Remote == nil {
		return nil, errors.New("remote is required")
	}
	if deps.Log == nil {
		deps.Log = NewLogSink(normalized.LogCapacity)
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	return &Creator{
		cfg:      normalized,
		remote:   deps.Remote,
		log:      deps.Log,
		logger:   deps.Logger,
		newRunID: deps.NewRunID,
	}, nil
}

// Log returns the sink that receives non-fatal failures.
func (c *Creator) Log() *LogSink {
	return c.log
}

// ResolveDestination looks name up as an organization first and falls back to a user.
// An empty name resolves the authenticated user.
func (c *Creator) ResolveDestination(ctx context.Context, name string) (schema.Destination, error) {
	return c.resolve(c.withLogger(ctx), name)
}

func (c *Creator) resolve(ctx context.Context, name string) (schema.Destination, error) {
	log := pslog.Ctx(ctx)
	name = strings.TrimSpace(name)
	if name == "" {
		dest, err := c.remote.LookupUser(ctx, "")
		if err != nil {
			if errors.Is(err, schema.ErrAccountNotFound) {
				return schema.Destination{}, fmt.Errorf("%w: authenticated user", schema.ErrDestinationNotFound)
			}
			return schema.Destination{}, err
		}
		log.Debug("creator destination resolved", "dest", dest.Login, "kind", dest.Kind)
		return dest, nil
	}

	dest, err := c.remote.LookupOrganization(ctx, name)
	if err == nil {
		log.Debug("creator destination resolved", "dest", dest.Login, "kind", dest.Kind)
		return dest, nil
	}
	if !errors.Is(err, schema.ErrAccountNotFound) {
		return schema.Destination{}, err
	}
	log.Trace("creator organization miss", "dest", name)

	dest, err = c.remote.LookupUser(ctx, name)
	if err != nil {
		if errors.Is(err, schema.ErrAccountNotFound) {
			return schema.Destination{}, fmt.Errorf("%w: %s", schema.ErrDestinationNotFound, name)
		}
		return schema.Destination{}, err
	}
	log.Debug("creator destination resolved", "dest", dest.Login, "kind", dest.Kind)
	return dest, nil
}

// Start creates req.Count repositories under req.Destination.
//
// Creation failures abort the run and leave already created repositories in place.
// Collaborators the remote does not recognise are recorded to the log sink and skipped;
// any other collaborator failure aborts the run. Cancellation of ctx is honoured only
// between repositories.
func (c *Creator) Start(ctx context.Context, req StartRequest) (schema.RunReport, error) {
	report := schema.RunReport{RunID: c.newRunID(), State: schema.StateInit}
	ctx = c.withLogger(ctx)
	log := logx.WithRun(ctx, report.RunID)
	ctx = logx.ContextWithRunLogger(ctx, log, report.RunID)

	role, template, lists, err := c.prepare(req)
	if err != nil {
		log.Warn("creator start rejected", "err", err)
		return abort(report), err
	}
	log.Info("creator start", "count", req.Count, "dest", req.Destination, "role", role, "private", req.Private, "template", template)

	dest, err := c.resolve(ctx, req.Destination)
	if err != nil {
		if errors.Is(err, schema.ErrDestinationNotFound) {
			c.log.Record(schema.CategoryDestination, fmt.Sprintf("destination %q not found as organization or user", req.Destination))
		}
		log.Warn("creator destination failed", "err", err)
		return abort(report), err
	}
	report.Destination = dest
	report.State = schema.StateDestinationResolved
	log = logx.WithDestination(log, dest)
	log.Debug("creator state", "state", report.State)

	next, stop := iter.Pull(req.Names.Generate())
	defer stop()

	for i := 0; i < req.Count; i++ {
		if err := ctx.Err(); err != nil {
			log.Warn("creator cancelled", "index", i, "err", err)
			return abort(report), err
		}
		pair, ok := next()
		if !ok {
			err := fmt.Errorf("%w: sequence ended after %d names", schema.ErrInvalidGenerator, i)
			log.Warn("creator names exhausted", "index", i, "err", err)
			return abort(report), err
		}

		report.State = schema.StateCreatingRepo
		log.Debug("creator state", "state", report.State, "index", i, "name", pair.Name)
		repo, err := c.remote.CreateRepository(ctx, dest, schema.CreateRepoRequest{
			Name:        pair.Name,
			Description: pair.Description,
			Private:     req.Private,
			Template:    template,
			AutoInit:    true,
		})
		if err != nil {
			log.Warn("creator repo create failed", "index", i, "name", pair.Name, "err", err)
			return abort(report), fmt.Errorf("create repository %d (%s): %w", i, pair.Name, err)
		}
		logx.WithRepo(log, repo).Info("creator repo created", "index", i)

		report.State = schema.StateAssigningCollaborators
		result := schema.RepoResult{Index: i, Repo: repo}
		if err := c.assign(ctx, log, i, repo, lists[i], role, &result); err != nil {
			report.Repos = append(report.Repos, result)
			return abort(report), err
		}
		report.Repos = append(report.Repos, result)
		if req.OnRepo != nil {
			req.OnRepo(result)
		}
	}

	report.State = schema.StateDone
	log.Info("creator done", "created", len(report.Repos), "log_entries", c.log.Len())
	return report, nil
}

func (c *Creator) assign(ctx context.Context, log pslog.Logger, index int, repo schema.RepoRef, logins []string, role schema.Role, result *schema.RepoResult) error {
	for _, login := range logins {
		login = strings.TrimSpace(login)
		if login == "" {
			continue
		}
		err := c.remote.AddCollaborator(ctx, repo, login, role)
		if err == nil {
			result.Added = append(result.Added, login)
			log.Debug("creator collaborator added", "index", index, "login", login, "role", role)
			continue
		}
		if errors.Is(err, schema.ErrUnknownCollaborator) {
			result.Unknown = append(result.Unknown, login)
			c.log.Record(schema.CategoryCollaborator, fmt.Sprintf("error while adding collaborator at number %d - collaborator %s: %v", index, login, err))
			log.Warn("creator collaborator unknown", "index", index, "login", login)
			continue
		}
		log.Warn("creator collaborator failed", "index", index, "login", login, "err", err)
		return fmt.Errorf("add collaborator %s to repository %d (%s): %w", login, index, repo.Name, err)
	}
	return nil
}

func (c *Creator) prepare(req StartRequest) (schema.Role, string, [][]string, error) {
	if err := schema.ValidateCount(req.Count, c.cfg.MaxRepos); err != nil {
		return "", "", nil, err
	}
	if req.Names == nil {
		return "", "", nil, fmt.Errorf("%w: no generator given", schema.ErrInvalidGenerator)
	}
	role := c.cfg.DefaultRole
	if strings.TrimSpace(string(req.Role)) != "" {
		normalized, err := schema.NormalizeRole(string(req.Role))
		if err != nil {
			return "", "", nil, err
		}
		role = normalized
	}
	template := strings.TrimSpace(req.Template)
	if template == "" {
		template = c.cfg.DefaultTemplate
	}
	lists := req.Collaborators
	if lists == nil {
		lists = make([][]string, req.Count)
	}
	if len(lists) != req.Count {
		return "", "", nil, fmt.Errorf("%w: got %d lists for %d repositories", schema.ErrCollaboratorCount, len(lists), req.Count)
	}
	return role, template, lists, nil
}

func (c *Creator) withLogger(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.logger != nil {
		return pslog.ContextWithLogger(ctx, c.logger)
	}
	return ctx
}

func abort(report schema.RunReport) schema.RunReport {
	report.State = schema.StateAborted
	return report
}
