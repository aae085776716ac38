package checklist

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// fileHeader holds the optional top-level fields of the wrapped file shape.
type fileHeader struct {
	Title        string    `yaml:"title"`
	StatusPolicy string    `yaml:"status_policy"`
	Sections     yaml.Node `yaml:"sections"`
}

// Decode parses a checklist file for the named framework.
//
// Two shapes are accepted, in JSON or YAML:
//
//	{"<section>": [items...], ...}
//	{"title": "...", "status_policy": "...", "sections": {"<section>": [items...]}}
//
// Section order follows the file.
func Decode(name string, data []byte) (*domain.Framework, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: checklist %s: %v", domain.ErrInvalidInput, name, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: checklist %s is empty", domain.ErrInvalidInput, name)
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: checklist %s must be a mapping", domain.ErrInvalidInput, name)
	}

	fw := &domain.Framework{
		Name:   name,
		Policy: domain.DefaultStatusPolicy,
	}

	sections := doc
	if hasKey(doc, "sections") {
		var header fileHeader
		if err := doc.Decode(&header); err != nil {
			return nil, fmt.Errorf("%w: checklist %s: %v", domain.ErrInvalidInput, name, err)
		}
		policy, ok := domain.ParseStatusPolicy(header.StatusPolicy)
		if !ok {
			return nil, fmt.Errorf("%w: checklist %s: unknown status_policy %q",
				domain.ErrInvalidInput, name, header.StatusPolicy)
		}
		fw.Title = header.Title
		fw.Policy = policy
		sections = &header.Sections
	}

	checklist, err := decodeSections(name, sections)
	if err != nil {
		return nil, err
	}
	fw.Checklist = checklist
	return fw, nil
}

// decodeSections walks a section mapping in document order.
func decodeSections(name string, node *yaml.Node) (*domain.Checklist, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: checklist %s: sections must be a mapping", domain.ErrInvalidInput, name)
	}

	checklist := &domain.Checklist{Framework: name}
	seen := make(map[string]string)

	// Mapping content alternates key, value.
	for i := 0; i+1 < len(node.Content); i += 2 {
		sectionName := strings.TrimSpace(node.Content[i].Value)

		var items []domain.ChecklistItem
		if err := node.Content[i+1].Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: checklist %s section %q: %v",
				domain.ErrInvalidInput, name, sectionName, err)
		}

		for j := range items {
			item := &items[j]
			item.ID = strings.TrimSpace(item.ID)
			item.Question = strings.TrimSpace(item.Question)
			if item.ID == "" || item.Question == "" {
				return nil, fmt.Errorf("%w: checklist %s section %q item %d needs an id and a question",
					domain.ErrInvalidInput, name, sectionName, j+1)
			}
			if prev, dup := seen[item.ID]; dup {
				return nil, fmt.Errorf("%w: checklist %s: duplicate id %q in %q and %q",
					domain.ErrInvalidInput, name, item.ID, prev, sectionName)
			}
			seen[item.ID] = sectionName
			if item.Threshold < 0 || item.Threshold > 1 {
				return nil, fmt.Errorf("%w: checklist %s item %s: threshold %v outside [0, 1]",
					domain.ErrInvalidInput, name, item.ID, item.Threshold)
			}
			if item.Section == "" {
				item.Section = sectionName
			}
		}

		checklist.Sections = append(checklist.Sections, domain.ChecklistSection{
			Name:  sectionName,
			Items: items,
		})
	}

	if checklist.Len() == 0 {
		return nil, fmt.Errorf("%w: checklist %s has no requirements", domain.ErrInvalidInput, name)
	}
	return checklist, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1].Kind == yaml.MappingNode
		}
	}
	return false
}
