package export

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/todoscan/internal/todo"
)

// yamlItem is the serialized shape of an item. Absent fields are omitted.
type yamlItem struct {
	Description string            `yaml:"description"`
	Marker      string            `yaml:"marker,omitempty"`
	Priority    string            `yaml:"priority,omitempty"`
	Assignee    string            `yaml:"assignee,omitempty"`
	Category    string            `yaml:"category,omitempty"`
	Issue       string            `yaml:"issue,omitempty"`
	Due         string            `yaml:"due,omitempty"`
	Tags        map[string]string `yaml:"tags,omitempty"`
	File        string            `yaml:"file"`
	Line        int               `yaml:"line"`
}

type yamlDocument struct {
	Items []yamlItem `yaml:"items"`
}

// YAML renders items as a document with a single "items" list.
func YAML(items []todo.Item) (string, error) {
	doc := yamlDocument{Items: make([]yamlItem, 0, len(items))}

	for _, it := range items {
		entry := yamlItem{
			Description: it.Description,
			Marker:      it.Marker,
			Priority:    it.Priority,
			Assignee:    it.Assignee,
			Category:    it.Category,
			Issue:       it.IssueID,
			Tags:        it.Tags,
			File:        it.FilePath,
			Line:        it.Line,
		}

		if it.HasDue() {
			entry.Due = it.Due.String()
		}

		doc.Items = append(doc.Items, entry)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}

	return string(out), nil
}
