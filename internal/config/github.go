package config

import (
	"fmt"
	"strings"
	"time"
)

// GitHubConfig holds configuration of the GitHub source.
type GitHubConfig struct {
	// Token is the personal access token used for REST and GraphQL calls.
	Token string
	// APIURL overrides the REST endpoint (GitHub Enterprise). Empty means github.com.
	APIURL string
	// GraphQLURL overrides the GraphQL endpoint. Empty means github.com.
	GraphQLURL string
	// Organizations are collected with all their repositories.
	Organizations []string
	// Users are collected with all their repositories.
	Users []string
	// Repositories are extra owner/name repositories collected explicitly.
	Repositories []string
	// PerPage is the page size requested from the REST API.
	PerPage int
	// PageTimeout bounds each page fetch.
	PageTimeout time.Duration
	// RetryAttempts is the number of attempts per page fetch.
	RetryAttempts int
}

// LoadGitHubConfigFromEnv loads GitHub configuration from environment variables.
func LoadGitHubConfigFromEnv() GitHubConfig {
	return GitHubConfig{
		Token:         GetEnv("GITHUB_TOKEN", ""),
		APIURL:        GetEnv("GITHUB_API_URL", ""),
		GraphQLURL:    GetEnv("GITHUB_GRAPHQL_URL", ""),
		Organizations: GetEnvList("GITHUB_ORGANIZATIONS"),
		Users:         GetEnvList("GITHUB_USERS"),
		Repositories:  GetEnvList("GITHUB_REPOSITORIES"),
		PerPage:       GetEnvInt("GITHUB_PER_PAGE", 100),
		PageTimeout:   GetEnvDuration("GITHUB_PAGE_TIMEOUT", 30*time.Second),
		RetryAttempts: GetEnvInt("GITHUB_RETRY_ATTEMPTS", 3),
	}
}

// Validate validates GitHub configuration.
func (c GitHubConfig) Validate() error {
	if c.PerPage <= 0 || c.PerPage > 100 {
		return fmt.Errorf("invalid GITHUB_PER_PAGE: %d (must be between 1 and 100)", c.PerPage)
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("PageTimeout must be greater than 0")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RetryAttempts must be greater than 0")
	}
	for _, repo := range c.Repositories {
		parts := strings.Split(repo, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("invalid repository %q (must be owner/name)", repo)
		}
	}
	return nil
}

// HasScopes reports whether anything is configured for collection.
func (c GitHubConfig) HasScopes() bool {
	return len(c.Organizations)+len(c.Users)+len(c.Repositories) > 0
}
