// Package github wraps the GitHub REST API for the issue-fix and PR-review
// drivers: pull request metadata and file listings, pull request creation,
// issue comments, and position-anchored review comments.
package github
