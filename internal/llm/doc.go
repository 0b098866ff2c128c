// Package llm is the boundary to the language-model provider.
//
// New returns an Unconfigured client when no API key is set, so callers can
// check Available() and skip enhancement cheaply instead of attempting a call
// that is certain to fail.
package llm
