package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/banderson/issueops/internal/adapter/cli"
	"github.com/banderson/issueops/internal/adapter/git"
	githubadapter "github.com/banderson/issueops/internal/adapter/github"
	"github.com/banderson/issueops/internal/adapter/llm/anthropic"
	"github.com/banderson/issueops/internal/adapter/llm/bedrock"
	llmhttp "github.com/banderson/issueops/internal/adapter/llm/http"
	"github.com/banderson/issueops/internal/adapter/observability"
	"github.com/banderson/issueops/internal/apply"
	"github.com/banderson/issueops/internal/config"
	"github.com/banderson/issueops/internal/domain"
	"github.com/banderson/issueops/internal/usecase/issuefix"
	"github.com/banderson/issueops/internal/usecase/prreview"
	"github.com/banderson/issueops/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Local runs can keep secrets in a .env file; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "issueops",
		EnvPrefix:   "ISSUEOPS",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	reporter := buildReporter(cfg.Logging)

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	githubClient := githubadapter.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)
	gitEngine := git.NewEngine(repoDir, cfg.Git.Remote, cfg.GitHub.Token)
	applier := apply.NewEngine(repoDir, reporter)

	retryConf, timeout := httpSettings(cfg.HTTP)

	bedrockClient := bedrock.NewClient(cfg.Bedrock.APIKey, cfg.Bedrock.Region, cfg.Bedrock.KnowledgeBaseID, cfg.Bedrock.ModelARN)
	bedrockClient.SetRetryConfig(retryConf)
	bedrockClient.SetTimeout(timeout)

	anthropicClient := anthropic.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	anthropicClient.SetRetryConfig(retryConf)
	anthropicClient.SetTimeout(timeout)
	if cfg.Anthropic.MaxTokens > 0 {
		anthropicClient.SetMaxTokens(cfg.Anthropic.MaxTokens)
	}

	fixDriver := issuefix.NewDriver(bedrockClient, gitEngine, githubClient, applier, reporter, issuefix.Config{
		DefaultBaseBranch: cfg.Git.DefaultBaseBranch,
	})
	reviewDriver := prreview.NewDriver(githubClient, anthropicClient, reporter, prreview.Config{
		SkipExtensions: cfg.Review.SkipExtensions,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		IssueFixer: validatedFixer{cfg: cfg, driver: fixDriver},
		Reviewer:   validatedReviewer{cfg: cfg, driver: reviewDriver},
		Version:    version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		if errors.Is(err, cli.ErrShouldReview) {
			return err
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// validatedFixer defers config validation until the fix-issue command
// actually runs, so unrelated commands work with partial config.
type validatedFixer struct {
	cfg    config.Config
	driver *issuefix.Driver
}

func (v validatedFixer) Run(ctx context.Context, req issuefix.Request) (issuefix.Result, error) {
	if err := v.cfg.ValidateForIssueFix(); err != nil {
		return issuefix.Result{}, err
	}
	return v.driver.Run(ctx, req)
}

type validatedReviewer struct {
	cfg    config.Config
	driver *prreview.Driver
}

func (v validatedReviewer) Run(ctx context.Context, prNumber int) (domain.ReviewStats, error) {
	if err := v.cfg.ValidateForReview(); err != nil {
		return domain.ReviewStats{}, err
	}
	return v.driver.Run(ctx, prNumber)
}

// reporter is the full leveled surface both drivers and the apply engine
// draw their logger interfaces from.
type reporter interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogError(ctx context.Context, message string, fields map[string]interface{})
	LogNotice(ctx context.Context, message string, fields map[string]interface{})
}

// buildReporter selects the reporter implementation. "auto" picks human
// output on a terminal and Actions annotations otherwise, so workflow runs
// get ::warning:: style commands without configuration.
func buildReporter(cfg config.LoggingConfig) reporter {
	switch cfg.Format {
	case "actions":
		return observability.NewActionsReporter(os.Stdout)
	case "human":
		return observability.NewHumanReporter(os.Stdout)
	default:
		if observability.IsOutputTerminal() {
			return observability.NewHumanReporter(os.Stdout)
		}
		return observability.NewActionsReporter(os.Stdout)
	}
}

func httpSettings(cfg config.HTTPConfig) (llmhttp.RetryConfig, time.Duration) {
	retryConf := llmhttp.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retryConf.MaxRetries = cfg.MaxRetries
	}
	if d, err := time.ParseDuration(cfg.InitialBackoff); err == nil && d > 0 {
		retryConf.InitialBackoff = d
	}
	if d, err := time.ParseDuration(cfg.MaxBackoff); err == nil && d > 0 {
		retryConf.MaxBackoff = d
	}
	if cfg.BackoffMultiplier > 0 {
		retryConf.Multiplier = cfg.BackoffMultiplier
	}

	timeout := 60 * time.Second
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		timeout = d
	}
	return retryConf, timeout
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "issueops"))
	}
	return paths
}
