package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/repostamp/core"
	"pkt.systems/repostamp/internal/appdata"
	"pkt.systems/repostamp/internal/collab"
	"pkt.systems/repostamp/internal/namegen"
	"pkt.systems/repostamp/schema"
)

type createOptions struct {
	dest          string
	count         int
	generator     string
	params        []string
	collaborators string
	collabParams  []string
	role          string
	private       bool
	template      string
	slot          string
	backend       string
	dryRun        bool
}

func newCreateCmd(cfgPath *string) *cobra.Command {
	var opts createOptions
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create repositories and add collaborators",
		Example: `  repostamp create --dest my-class --count 12 --generator groups --param start=1 --param test=3
  repostamp create --dest my-class --count 3 --collaborators inline --collab-param groups="alice,bob;carol;dave"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, *cfgPath, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dest, "dest", "d", "", "organization or user (default: last used, else the token owner)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "number of repositories")
	cmd.Flags().StringVarP(&opts.generator, "generator", "g", "", "name generator (default: last used, else groups)")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "generator parameter key=value (repeatable)")
	cmd.Flags().StringVar(&opts.collaborators, "collaborators", "none", "collaborator source")
	cmd.Flags().StringArrayVar(&opts.collabParams, "collab-param", nil, "collaborator source parameter key=value (repeatable)")
	cmd.Flags().StringVar(&opts.role, "role", "", "collaborator role: "+roleList())
	cmd.Flags().BoolVar(&opts.private, "private", true, "create private repositories")
	cmd.Flags().StringVar(&opts.template, "template", "", "gitignore template")
	cmd.Flags().StringVar(&opts.slot, "slot", string(schema.DefaultSlot), "credential slot")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "credential backend override")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print names and collaborators without calling GitHub")
	return cmd
}

func runCreate(cmd *cobra.Command, cfgPath string, opts createOptions) error {
	a, err := openApp(cmd, cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	out := cmd.OutOrStdout()
	flags := cmd.Flags()

	if !flags.Changed("dest") {
		if last, ok := a.recall(appdata.KeyLastDestination); ok {
			opts.dest = last
		}
	}
	if opts.generator == "" {
		opts.generator = "groups"
		if last, ok := a.recall(appdata.KeyLastGenerator); ok {
			opts.generator = last
		}
	}
	if opts.role == "" {
		if last, ok := a.recall(appdata.KeyLastRole); ok {
			opts.role = last
		}
	}
	if opts.template == "" {
		if last, ok := a.recall(appdata.KeyLastTemplate); ok {
			opts.template = last
		}
	}
	if !flags.Changed("private") {
		opts.private = a.cfg.Run.Private
	}
	if err := schema.ValidateCount(opts.count, a.cfg.Run.MaxRepos); err != nil {
		return err
	}

	genParams, err := parseParams(opts.params)
	if err != nil {
		return err
	}
	names, err := namegen.Default().New(opts.generator, genParams)
	if err != nil {
		return err
	}
	sourceParams, err := parseParams(opts.collabParams)
	if err != nil {
		return err
	}
	source, err := collab.Default().New(opts.collaborators, sourceParams)
	if err != nil {
		return err
	}
	lists, err := source.Produce(opts.count)
	if err != nil {
		return err
	}

	if opts.dryRun {
		return printPlan(out, names, lists, opts.count)
	}

	slot, err := schema.NormalizeSlot(schema.Slot(opts.slot))
	if err != nil {
		return err
	}
	store, err := a.credentials(opts.backend)
	if err != nil {
		return err
	}
	token, err := ensureToken(cmd, store, slot)
	if err != nil {
		a.printLog(out)
		return err
	}
	remote, err := a.remote(token)
	if err != nil {
		return err
	}

	creator, err := core.NewCreator(a.cfg.CreatorConfig(), core.CreatorDeps{
		Remote: remote,
		Log:    a.log,
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	subID := a.log.Subscribe(func(category, message string) {
		a.logger.Warn("run log entry", "category", category, "message", message)
	})
	defer a.log.Unsubscribe(subID)

	report, runErr := creator.Start(cmd.Context(), core.StartRequest{
		Count:         opts.count,
		Destination:   opts.dest,
		Names:         names,
		Collaborators: lists,
		Role:          schema.Role(opts.role),
		Private:       opts.private,
		Template:      opts.template,
		OnRepo: func(result schema.RepoResult) {
			printRepo(out, result)
		},
	})

	if report.State != schema.StateAborted || len(report.Repos) > 0 {
		a.remember(appdata.KeyLastDestination, opts.dest)
		a.remember(appdata.KeyLastGenerator, opts.generator)
		if opts.role != "" {
			a.remember(appdata.KeyLastRole, opts.role)
		}
		if opts.template != "" {
			a.remember(appdata.KeyLastTemplate, opts.template)
		}
		if err := a.data.Save(); err != nil {
			a.logger.Warn("appdata save failed", "err", err)
		}
	}

	a.printLog(out)
	printSummary(out, report, opts.count)
	return runErr
}

func printPlan(out io.Writer, names namegen.Generator, lists [][]string, count int) error {
	i := 0
	for pair := range names.Generate() {
		if i == count {
			break
		}
		if err := schema.ValidateRepoName(pair.Name); err != nil {
			return fmt.Errorf("repository %d: %w", i+1, err)
		}
		line := fmt.Sprintf("%3d  %-30s  %s", i+1, pair.Name, pair.Description)
		if len(lists[i]) > 0 {
			line += "  [" + strings.Join(lists[i], ", ") + "]"
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
		i++
	}
	if i < count {
		return fmt.Errorf("%w: only %d of %d names available", schema.ErrInvalidGenerator, i, count)
	}
	return nil
}

func printRepo(out io.Writer, result schema.RepoResult) {
	name := result.Repo.FullName
	if name == "" {
		name = result.Repo.Name
	}
	line := fmt.Sprintf("%3d  %s", result.Index+1, name)
	if result.Repo.URL != "" {
		line += "  " + result.Repo.URL
	}
	if len(result.Added) > 0 {
		line += "  +" + strings.Join(result.Added, ",")
	}
	_, _ = fmt.Fprintln(out, line)
}

func printSummary(out io.Writer, report schema.RunReport, count int) {
	dest := report.Destination.Login
	if dest == "" {
		dest = "(unresolved)"
	}
	unknown := 0
	for _, repo := range report.Repos {
		unknown += len(repo.Unknown)
	}
	_, _ = fmt.Fprintf(out, "%s: created %d of %d repositories under %s", report.State, len(report.Repos), count, dest)
	if unknown > 0 {
		_, _ = fmt.Fprintf(out, ", %d unknown collaborators skipped", unknown)
	}
	_, _ = fmt.Fprintf(out, " (run %s)\n", report.RunID)
}

func roleList() string {
	roles := schema.Roles()
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}
