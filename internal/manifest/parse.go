package manifest

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const (
	tagNull = "!!null"
	tagStr  = "!!str"
)

// Parse decodes and validates a manifest document. source names the document
// in error messages.
func Parse(data []byte, source string) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}

	v := validator{}
	m := v.document(&doc)
	if len(v.issues) > 0 {
		return nil, &ValidationError{Path: source, Issues: v.issues}
	}
	return m, nil
}

type validator struct {
	issues []Issue
}

func (v *validator) fail(field, format string, args ...any) {
	v.issues = append(v.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) document(doc *yaml.Node) *Manifest {
	root := resolve(doc)
	if root != nil && root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			root = nil
		} else {
			root = resolve(root.Content[0])
		}
	}
	// An empty file decodes to a zero node; treat it like an empty mapping.
	if root == nil || root.Kind == 0 || isNull(root) {
		v.fail("models", "field required")
		return nil
	}
	if root.Kind != yaml.MappingNode {
		v.fail("", "input should be a mapping with a models key")
		return nil
	}

	models := lookup(root, "models")
	if models == nil {
		v.fail("models", "field required")
		return nil
	}
	if models.Kind != yaml.SequenceNode {
		v.fail("models", "input should be a list")
		return nil
	}
	if len(models.Content) == 0 {
		v.fail("models", "list should have at least 1 item")
		return nil
	}

	m := &Manifest{Models: make([]Entry, 0, len(models.Content))}
	for i, item := range models.Content {
		field := fmt.Sprintf("models[%d]", i)
		if entry, ok := v.entry(field, resolve(item)); ok {
			m.Models = append(m.Models, entry)
		}
	}
	return m
}

func (v *validator) entry(field string, node *yaml.Node) (Entry, bool) {
	if node == nil || node.Kind != yaml.MappingNode {
		v.fail(field, "input should be a mapping")
		return Entry{}, false
	}
	before := len(v.issues)

	entry := Entry{Ref: DefaultRef}

	repo := lookup(node, "repo")
	switch {
	case repo == nil || isNull(repo):
		v.fail(field+".repo", "field required")
	case !isString(repo):
		v.fail(field+".repo", "input should be a string")
	default:
		if msg := checkRepoID(repo.Value); msg != "" {
			v.fail(field+".repo", "%s", msg)
		}
		entry.Repo = repo.Value
	}

	if ref := lookup(node, "ref"); ref != nil && !isNull(ref) {
		switch {
		case !isString(ref):
			v.fail(field+".ref", "input should be a string")
		case strings.TrimSpace(ref.Value) == "":
			v.fail(field+".ref", "must not be empty")
		default:
			entry.Ref = ref.Value
		}
	}

	entry.Include = v.patterns(field+".include", lookup(node, "include"))
	entry.Exclude = v.patterns(field+".exclude", lookup(node, "exclude"))

	return entry, len(v.issues) == before
}

func (v *validator) patterns(field string, node *yaml.Node) Patterns {
	if node == nil || isNull(node) {
		return Patterns{}
	}
	switch {
	case isString(node):
		v.checkPattern(field, node.Value)
		return Single(node.Value)
	case node.Kind == yaml.SequenceNode:
		values := make([]string, 0, len(node.Content))
		for i, item := range node.Content {
			item = resolve(item)
			itemField := fmt.Sprintf("%s[%d]", field, i)
			if !isString(item) {
				v.fail(itemField, "input should be a string")
				continue
			}
			v.checkPattern(itemField, item.Value)
			values = append(values, item.Value)
		}
		return Many(values...)
	default:
		v.fail(field, "input should be a string or a list of strings")
		return Patterns{}
	}
}

func (v *validator) checkPattern(field, pattern string) {
	if pattern == "" {
		v.fail(field, "glob pattern must not be empty")
		return
	}
	if !doublestar.ValidatePattern(pattern) {
		v.fail(field, "invalid glob pattern %q", pattern)
	}
}

// checkRepoID accepts "name" and "owner/name" ids; it returns a message
// describing the problem, or "" when the id is acceptable.
func checkRepoID(id string) string {
	if id == "" {
		return "must not be empty"
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return "must not contain whitespace"
	}
	parts := strings.Split(id, "/")
	if len(parts) > 2 {
		return fmt.Sprintf("%q should be in owner/name form", id)
	}
	for _, part := range parts {
		if part == "" {
			return fmt.Sprintf("%q should be in owner/name form", id)
		}
	}
	return ""
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	var found *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if k := resolve(mapping.Content[i]); k != nil && k.Value == key {
			found = resolve(mapping.Content[i+1])
		}
	}
	return found
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == tagNull
}

func isString(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == tagStr
}
