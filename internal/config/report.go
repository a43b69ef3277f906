package config

import (
	"fmt"
	"strings"
)

// ReportConfig holds weekly report configuration.
type ReportConfig struct {
	// Repository is the owner/name repository the weekly report reads. Empty means all.
	Repository string
	// ExcludedLabel is a label whose issues never appear in the weekly report.
	ExcludedLabel string
}

// LoadReportConfigFromEnv loads report configuration from environment variables.
func LoadReportConfigFromEnv() ReportConfig {
	return ReportConfig{
		Repository:    GetEnv("REPORT_REPOSITORY", ""),
		ExcludedLabel: GetEnv("REPORT_EXCLUDED_LABEL", "report"),
	}
}

// Validate validates report configuration.
func (c ReportConfig) Validate() error {
	if c.Repository == "" {
		return nil
	}
	parts := strings.Split(c.Repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid REPORT_REPOSITORY %q (must be owner/name)", c.Repository)
	}
	return nil
}
