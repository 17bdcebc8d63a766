// Package prompts holds the coaching prompt templates embedded in the binary.
// Each JSON file maps a prompt key to a text/template body with {{.Key}} fields.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"
)

// Coaching is the prompt file used by the feedback collaborator.
const Coaching = "coaching.json"

//go:embed *.json
var files embed.FS

// library is every embedded prompt, keyed by file then prompt key.
type library struct {
	raw       map[string]map[string]string
	templates map[string]map[string]*template.Template
}

var load = sync.OnceValues(func() (*library, error) { return parse(files) })

func parse(fsys embed.FS) (*library, error) {
	entries, err := fsys.ReadDir(".")
	if err != nil {
		return nil, err
	}
	lib := &library{
		raw:       make(map[string]map[string]string),
		templates: make(map[string]map[string]*template.Template),
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := fsys.ReadFile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", e.Name(), err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", e.Name(), err)
		}
		parsed := make(map[string]*template.Template, len(prompts))
		for key, body := range prompts {
			t, err := template.New(key).Option("missingkey=error").Parse(body)
			if err != nil {
				return nil, fmt.Errorf("prompt %s/%s: %w", e.Name(), key, err)
			}
			parsed[key] = t
		}
		lib.raw[e.Name()] = prompts
		lib.templates[e.Name()] = parsed
	}
	return lib, nil
}

func (l *library) file(filename string) (map[string]string, error) {
	prompts, ok := l.raw[filename]
	if !ok {
		return nil, fmt.Errorf("prompt file %s not found", filename)
	}
	return prompts, nil
}

// Get returns the unrendered body of a prompt.
func Get(filename, key string) (string, error) {
	lib, err := load()
	if err != nil {
		return "", err
	}
	prompts, err := lib.file(filename)
	if err != nil {
		return "", err
	}
	body, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return body, nil
}

// MustGet is Get for prompts the binary cannot run without.
func MustGet(filename, key string) string {
	body, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return body
}

// Render executes a prompt with data. Every field the prompt references must be in data.
func Render(filename, key string, data map[string]string) (string, error) {
	if _, err := Get(filename, key); err != nil {
		return "", err
	}
	lib, _ := load()
	var sb strings.Builder
	if err := lib.templates[filename][key].Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %s/%s: %w", filename, key, err)
	}
	return sb.String(), nil
}

// Guide returns the evaluation guide for a question type, or the default guide.
func Guide(questionType string) string {
	if g, err := Get(Coaching, "guide-"+questionType); err == nil {
		return g
	}
	return MustGet(Coaching, "guide-default")
}

// Keys lists the prompt keys in a file, sorted.
func Keys(filename string) ([]string, error) {
	lib, err := load()
	if err != nil {
		return nil, err
	}
	prompts, err := lib.file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(prompts))
	for k := range prompts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
