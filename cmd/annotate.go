package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbotsxyz/xcresult-annotate/internal/annotate"
	"github.com/devbotsxyz/xcresult-annotate/internal/config"
	"github.com/devbotsxyz/xcresult-annotate/internal/db"
	"github.com/devbotsxyz/xcresult-annotate/internal/github"
	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
	"github.com/devbotsxyz/xcresult-annotate/internal/watcher"
	"github.com/devbotsxyz/xcresult-annotate/internal/xcresult"
)

// Annotation sinks.
const (
	sinkAuto     = "auto"
	sinkChecks   = "checks"
	sinkWorkflow = "workflow"
)

var (
	flagSink            string
	flagRepo            string
	flagSHA             string
	flagToken           string
	flagWait            time.Duration
	flagStripComponents int
	flagIncludeErrors   bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [bundle...]",
	Short: "Post result bundle diagnostics as check run annotations",
	Long: `Parse one or more result bundles and annotate the sources their diagnostics
point at.

With a token (--token, the github-token action input, or GITHUB_TOKEN) the
annotations are posted to a check run through the gh CLI. Without one they are
printed as workflow commands, which GitHub Actions turns into annotations.

Bundle paths default to the result-bundle-path action input.

Example:
  xcresult-annotate annotate build/Test.xcresult
  xcresult-annotate annotate --sink workflow --strip-components 5 Test.xcresult`,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVar(&flagSink, "sink", sinkAuto, "where to send annotations: auto, checks or workflow")
	annotateCmd.Flags().StringVar(&flagRepo, "repo", "", "repository as owner/name (default: $GITHUB_REPOSITORY)")
	annotateCmd.Flags().StringVar(&flagSHA, "sha", "", "commit to attach the check run to (default: $GITHUB_SHA, then HEAD)")
	annotateCmd.Flags().StringVar(&flagToken, "token", "", "GitHub token for the checks API")
	annotateCmd.Flags().DurationVar(&flagWait, "wait", 0, "wait up to this long for each bundle to be written")
	annotateCmd.Flags().IntVar(&flagStripComponents, "strip-components", -1, "leading path components to drop (default: from config, else relative to the git work tree)")
	annotateCmd.Flags().BoolVar(&flagIncludeErrors, "include-errors", false, "also annotate errors")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	cfg := workspace.Config

	paths := bundlePaths(args)
	if len(paths) == 0 {
		return fmt.Errorf("no result bundle given: pass a path or set the result-bundle-path input")
	}

	if flagWait > 0 {
		for _, p := range paths {
			if err := watcher.WaitForBundle(ctx, p, flagWait); err != nil {
				return fmt.Errorf("result bundle %s not ready: %w", p, err)
			}
		}
	}

	token := githubToken(flagToken)
	sink, err := resolveSink(flagSink, token)
	if err != nil {
		return err
	}

	strip := cfg.Annotate.StripComponents
	if cmd.Flags().Changed("strip-components") {
		if flagStripComponents < 0 {
			return fmt.Errorf("--strip-components must not be negative")
		}
		strip = &flagStripComponents
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	run := &annotateRun{
		parser:        xcresult.NewParser(xcresult.NewToolLoader(cfg.Xcresulttool.GetXcrun(), xcresult.LegacyMode(cfg.Xcresulttool.GetLegacy()))),
		runner:        &github.GHRunner{Token: token},
		out:           cmd.OutOrStdout(),
		cfg:           cfg,
		paths:         paths,
		sink:          sink,
		repo:          flagRepo,
		sha:           flagSHA,
		workDir:       cwd,
		strip:         strip,
		includeErrors: flagIncludeErrors || cfg.Annotate.IncludeErrors,
	}
	record, runErr := run.execute(ctx)

	if cfg.History.IsEnabled() && workspace.Found {
		if err := recordHistory(ctx, workspace, record); err != nil {
			logging.Warn("failed to record run history", "error", err)
		}
	}
	return runErr
}

// resolveSink picks the sink for name, where auto means checks when a token
// is available.
func resolveSink(name, token string) (string, error) {
	switch name {
	case sinkAuto, "":
		if token != "" {
			return sinkChecks, nil
		}
		return sinkWorkflow, nil
	case sinkChecks:
		if token == "" {
			return "", fmt.Errorf("the checks sink needs a GitHub token")
		}
		return sinkChecks, nil
	case sinkWorkflow:
		return sinkWorkflow, nil
	default:
		return "", fmt.Errorf("unknown sink %q: expected auto, checks or workflow", name)
	}
}

// annotateRun is one annotate invocation with its collaborators resolved.
type annotateRun struct {
	parser        *xcresult.Parser
	runner        github.Runner
	out           io.Writer
	cfg           *config.Config
	paths         []string
	sink          string
	repo          string
	sha           string
	workDir       string
	strip         *int
	includeErrors bool
}

// execute parses every bundle and publishes their annotations. It returns the
// run as it should be recorded, even on error. A bundle that fails to parse
// stops the run before anything is published.
func (a *annotateRun) execute(ctx context.Context) (*db.Run, error) {
	record := &db.Run{
		StartedAt: time.Now(),
		Status:    db.StatusFailed,
		Sink:      a.sink,
	}
	fail := func(err error) (*db.Run, error) {
		record.FinishedAt = time.Now()
		record.Error = err.Error()
		return record, err
	}

	bundles, err := a.parser.ParseAll(ctx, a.paths)
	if err != nil {
		return fail(err)
	}

	opts := annotate.Options{
		WarningIssueTypes: a.cfg.Annotate.WarningIssueTypes,
		ErrorIssueTypes:   a.cfg.Annotate.ErrorIssueTypes,
		IncludeErrors:     a.includeErrors,
		Paths:             annotate.NewPathMapper(a.strip, a.workDir),
	}

	var annotations []annotate.Annotation
	for _, b := range bundles {
		found := annotate.Build(b.Record, opts)
		logging.Info("built annotations", "path", b.Path, "numAnnotations", len(found))
		annotations = append(annotations, found...)
		record.Bundles = append(record.Bundles, db.RunBundle{
			Path:          b.Path,
			RootID:        b.Info.RootID.Hash,
			FormatVersion: b.Info.Version.String(),
			NumWarnings:   len(b.Record.Warnings()),
			NumErrors:     len(b.Record.Errors()),
		})
	}

	summary := annotate.Summarize(annotations)
	record.NumAnnotations = summary.Total()
	record.NumFailures = summary.Failures

	switch a.sink {
	case sinkChecks:
		if err := a.publishChecks(ctx, record, annotations); err != nil {
			return fail(err)
		}
	default:
		if err := github.WorkflowCommands(a.out, annotations); err != nil {
			return fail(err)
		}
	}

	record.Status = db.StatusSucceeded
	record.FinishedAt = time.Now()
	return record, nil
}

func (a *annotateRun) publishChecks(ctx context.Context, record *db.Run, annotations []annotate.Annotation) error {
	repo, err := github.ResolveRepository(a.repo)
	if err != nil {
		return err
	}
	sha, err := github.ResolveHeadSHA(a.sha, a.workDir)
	if err != nil {
		return err
	}
	record.Repo = repo
	record.HeadSHA = sha

	publisher := github.NewPublisher(github.NewClient(a.runner))
	res, err := publisher.Publish(ctx, github.PublishRequest{
		Repo:         repo,
		HeadSHA:      sha,
		Name:         a.cfg.Check.GetName(),
		Title:        a.cfg.Check.GetTitle(),
		Annotations:  annotations,
		BatchSize:    a.cfg.Annotate.GetBatchSize(),
		AlwaysCreate: a.cfg.Check.AlwaysCreate,
	})
	if res != nil && res.CheckRun != nil {
		id := res.CheckRun.ID
		record.CheckRunID = &id
		record.Conclusion = res.Conclusion
	}
	if err != nil {
		return err
	}

	if res.CheckRun == nil {
		fmt.Fprintln(a.out, "No annotations to post.")
		return nil
	}
	fmt.Fprintf(a.out, "Posted %d annotations to check run %d (%s).\n", res.Posted, res.CheckRun.ID, res.Conclusion)
	return nil
}

// recordHistory stores run in the workspace history database.
func recordHistory(ctx context.Context, ws *config.Workspace, run *db.Run) error {
	ctx = context.WithoutCancel(ctx)
	database, err := db.OpenPath(ctx, ws.HistoryPath())
	if err != nil {
		return err
	}
	defer database.Close()
	return database.RecordRun(ctx, run)
}
