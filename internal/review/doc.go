// Package review builds the review prompt from filtered diff hunks and
// drives the single completion call against a provider.
package review
