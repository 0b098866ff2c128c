package search

import (
	"context"
	"errors"
	"strings"

	"github.com/aescanero/dago-node-analyzer/internal/model"
)

// SnippetLength is the number of runes kept in a document snippet.
const SnippetLength = 400

// ErrSearchFailed wraps every backend failure.
var ErrSearchFailed = errors.New("document search failed")

// Searcher is the document-search collaborator.
type Searcher interface {
	Search(ctx context.Context, text string, topK int) ([]model.DocumentRef, error)
}

// Noop is used when no search backend is configured. It always returns no documents.
type Noop struct{}

// Search returns an empty result.
func (Noop) Search(context.Context, string, int) ([]model.DocumentRef, error) {
	return []model.DocumentRef{}, nil
}

// Snippet shortens content to SnippetLength runes, appending an ellipsis when cut.
func Snippet(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= SnippetLength {
		return content
	}
	return string(runes[:SnippetLength]) + "…"
}
