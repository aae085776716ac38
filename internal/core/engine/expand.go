package engine

import (
	"strings"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// Expand flattens a checklist into scoring variants in section, item,
// alternative order. Items without usable alternatives yield one variant
// phrased as the question.
func Expand(c *domain.Checklist) []domain.Variant {
	if c == nil {
		return nil
	}

	variants := make([]domain.Variant, 0, c.Len())
	for _, section := range c.Sections {
		for _, item := range section.Items {
			sectionName := item.Section
			if sectionName == "" {
				sectionName = section.Name
			}

			base := domain.Variant{
				ID:        item.ID,
				Section:   sectionName,
				Question:  item.Question,
				Threshold: item.EffectiveThreshold(),
			}

			emitted := false
			for _, alt := range item.Alternatives {
				if strings.TrimSpace(alt) == "" {
					continue
				}
				v := base
				v.Phrasing = alt
				variants = append(variants, v)
				emitted = true
			}

			if !emitted {
				base.Phrasing = item.Question
				variants = append(variants, base)
			}
		}
	}

	return variants
}

// Phrasings returns the text of each variant, in order, for embedding.
func Phrasings(variants []domain.Variant) []string {
	texts := make([]string, len(variants))
	for i, v := range variants {
		texts[i] = v.Phrasing
	}
	return texts
}
