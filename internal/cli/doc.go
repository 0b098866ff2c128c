// Package cli implements the analyzer command-line tool.
package cli
