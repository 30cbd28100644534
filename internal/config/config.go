package config

import (
	"errors"
	"fmt"
)

// Config represents the full application configuration.
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Bedrock   BedrockConfig   `yaml:"bedrock"`
	Git       GitConfig       `yaml:"git"`
	Review    ReviewConfig    `yaml:"review"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GitHubConfig identifies the repository the run operates on.
type GitHubConfig struct {
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// AnthropicConfig configures the direct model backend used for PR review.
type AnthropicConfig struct {
	APIKey    string `yaml:"apiKey"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"maxTokens"`
}

// BedrockConfig configures the knowledge-base-augmented backend used for
// issue fixes.
type BedrockConfig struct {
	APIKey          string `yaml:"apiKey"`
	Region          string `yaml:"region"`
	KnowledgeBaseID string `yaml:"knowledgeBaseId"`
	ModelARN        string `yaml:"modelArn"`
}

type GitConfig struct {
	RepositoryDir     string `yaml:"repositoryDir"`
	Remote            string `yaml:"remote"`
	DefaultBaseBranch string `yaml:"defaultBaseBranch"`
}

// ReviewConfig configures the PR-review behavior.
type ReviewConfig struct {
	// SkipExtensions lists file suffixes that are never reviewed. Empty
	// means the built-in list.
	SkipExtensions []string `yaml:"skipExtensions"`
}

// HTTPConfig holds global HTTP client settings for the AI backends.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// LoggingConfig selects the reporter implementation.
type LoggingConfig struct {
	// Format is "actions" for workflow-command annotations, "human" for
	// plain leveled lines, or "auto" to pick based on the terminal.
	Format string `yaml:"format"`
}

// ValidateForIssueFix checks the settings the issue-fix workflow needs.
func (c Config) ValidateForIssueFix() error {
	var errs []error
	errs = append(errs, c.validateGitHub()...)
	if c.Bedrock.APIKey == "" {
		errs = append(errs, errors.New("bedrock.apiKey is required"))
	}
	if c.Bedrock.KnowledgeBaseID == "" {
		errs = append(errs, errors.New("bedrock.knowledgeBaseId is required"))
	}
	if c.Bedrock.ModelARN == "" {
		errs = append(errs, errors.New("bedrock.modelArn is required"))
	}
	return join(errs)
}

// ValidateForReview checks the settings the PR-review workflow needs.
func (c Config) ValidateForReview() error {
	var errs []error
	errs = append(errs, c.validateGitHub()...)
	if c.Anthropic.APIKey == "" {
		errs = append(errs, errors.New("anthropic.apiKey is required"))
	}
	return join(errs)
}

func (c Config) validateGitHub() []error {
	var errs []error
	if c.GitHub.Token == "" {
		errs = append(errs, errors.New("github.token is required"))
	}
	if c.GitHub.Owner == "" {
		errs = append(errs, errors.New("github.owner is required"))
	}
	if c.GitHub.Repo == "" {
		errs = append(errs, errors.New("github.repo is required"))
	}
	return errs
}

func join(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}
