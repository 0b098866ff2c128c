package template

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
)

var registerOnce sync.Once

// Engine renders named Handlebars templates that are parsed up front.
type Engine struct {
	templates map[string]*raymond.Template
	mu        sync.RWMutex
}

// NewEngine parses every template. A template that does not parse fails
// construction.
func NewEngine(sources map[string]string) (*Engine, error) {
	// Register custom helpers
	registerOnce.Do(registerHelpers)

	e := &Engine{templates: make(map[string]*raymond.Template, len(sources))}
	// Parse every template up front
	for name, src := range sources {
		if err := e.Register(name, src); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Register parses src and stores it under name, replacing any previous template.
func (e *Engine) Register(name, src string) error {
	if name == "" {
		return fmt.Errorf("template name is required")
	}

	// Parse the template
	tmpl, err := raymond.Parse(src)
	if err != nil {
		return fmt.Errorf("template %q: parse error: %w", name, err)
	}

	// Store under write lock
	e.mu.Lock()
	e.templates[name] = tmpl
	e.mu.Unlock()
	return nil
}

// Has reports whether a template is registered under name.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.templates[name]
	return ok
}

// Names returns the registered template names, sorted.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.templates))
	for n := range e.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render executes the named template with data.
func (e *Engine) Render(name string, data interface{}) (string, error) {
	// Look up the template (read lock)
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %q is not registered", name)
	}

	// Execute the template
	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template %q execution failed: %w", name, err)
	}
	return strings.TrimSpace(result), nil
}

// registerHelpers registers the helpers shared by every engine. raymond keeps
// helpers in a global registry, so this runs once per process.
func registerHelpers() {
	// lowercase helper
	raymond.RegisterHelper("lowercase", func(str string) string {
		return strings.ToLower(str)
	})

	// uppercase helper
	raymond.RegisterHelper("uppercase", func(str string) string {
		return strings.ToUpper(str)
	})

	// default helper - return default value if first arg is empty
	raymond.RegisterHelper("default", func(value interface{}, defaultValue interface{}) interface{} {
		if value == nil || value == "" {
			return defaultValue
		}
		return value
	})
}
