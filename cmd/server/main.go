// Package main provides the entry point for the github-reporting service.
package main

import "github.com/festy23/github_reporting/internal/cli"

func main() {
	cli.Execute()
}
