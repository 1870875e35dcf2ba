// Package github fetches pull request diffs from the GitHub REST API.
package github
