package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/comply/internal/core/domain"
)

func TestExpand(t *testing.T) {
	checklist := &domain.Checklist{
		Framework: "tcfd",
		Sections: []domain.ChecklistSection{
			{
				Name: "Governance",
				Items: []domain.ChecklistItem{
					{ID: "a", Question: "Q-a", Alternatives: []string{"a1", "", "  ", "a2"}, Threshold: 0.7},
					{ID: "b", Question: "Q-b"},
				},
			},
			{
				Name: "Strategy",
				Items: []domain.ChecklistItem{
					{ID: "c", Section: "Strategy (c)", Question: "Q-c", Alternatives: []string{"", " "}, Threshold: -1},
				},
			},
		},
	}

	variants := Expand(checklist)

	require.Len(t, variants, 4)
	assert.Equal(t, domain.Variant{ID: "a", Section: "Governance", Question: "Q-a", Phrasing: "a1", Threshold: 0.7}, variants[0])
	assert.Equal(t, domain.Variant{ID: "a", Section: "Governance", Question: "Q-a", Phrasing: "a2", Threshold: 0.7}, variants[1])
	assert.Equal(t, domain.Variant{ID: "b", Section: "Governance", Question: "Q-b", Phrasing: "Q-b", Threshold: 0.60}, variants[2])
	assert.Equal(t, domain.Variant{ID: "c", Section: "Strategy (c)", Question: "Q-c", Phrasing: "Q-c", Threshold: 0.60}, variants[3])
}

func TestExpand_Idempotent(t *testing.T) {
	checklist := testChecklist()

	first := Expand(checklist)
	second := Expand(checklist)

	assert.Equal(t, first, second)
	assert.Equal(t, testChecklist(), checklist, "input must not be modified")
}

func TestExpand_Nil(t *testing.T) {
	assert.Empty(t, Expand(nil))
	assert.Empty(t, Expand(&domain.Checklist{}))
}

func TestPhrasings(t *testing.T) {
	variants := Expand(testChecklist())

	assert.Equal(t, []string{
		"Are scope 1 emissions disclosed?",
		"Is water withdrawal disclosed?",
		"Who sits on the board?",
		"Which committee oversees climate?",
	}, Phrasings(variants))
}
