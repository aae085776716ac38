package domain

import "strings"

// DefaultThreshold is the similarity a requirement needs when its checklist
// entry does not define one.
const DefaultThreshold = 0.60

// ChecklistItem is a single requirement of a framework checklist.
// Items are loaded once from the checklist store and never mutated.
type ChecklistItem struct {
	// ID uniquely identifies the requirement within its framework (e.g. "gri-305-1").
	ID string `json:"id" yaml:"id"`

	// Section is the checklist section the item belongs to.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Question is the canonical wording of the requirement.
	Question string `json:"question" yaml:"question"`

	// Alternatives are extra phrasings scored in place of the question.
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`

	// Threshold is the similarity considered an adequate match.
	// Zero means DefaultThreshold.
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// EffectiveThreshold returns the item threshold, falling back to DefaultThreshold.
func (i ChecklistItem) EffectiveThreshold() float64 {
	if i.Threshold <= 0 {
		return DefaultThreshold
	}
	return i.Threshold
}

// ChecklistSection groups items under a heading. Order is file order.
type ChecklistSection struct {
	Name  string
	Items []ChecklistItem
}

// Checklist is the nested structure of one framework's requirements.
type Checklist struct {
	// Framework is the framework name the checklist belongs to.
	Framework string

	// Sections are in the order they appear in the source file.
	Sections []ChecklistSection
}

// Len returns the number of distinct requirement items.
func (c *Checklist) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, s := range c.Sections {
		n += len(s.Items)
	}
	return n
}

// Variant is one phrasing of a checklist requirement.
// Several variants may share one requirement ID.
type Variant struct {
	ID        string
	Section   string
	Question  string
	Phrasing  string
	Threshold float64
}

// StatusPolicy selects how a match is classified into a Status.
type StatusPolicy string

// Available status policies.
const (
	// StatusPolicyPercent classifies on the rounded match percentage:
	// 100 is LikelyMet, 80 to 99 is Unclear, anything lower is NotMet.
	StatusPolicyPercent StatusPolicy = "percent"

	// StatusPolicySimilarity classifies on raw similarity:
	// at or above threshold is LikelyMet, within 0.10 below it is Unclear.
	StatusPolicySimilarity StatusPolicy = "similarity"
)

// DefaultStatusPolicy is used by every framework that does not choose one.
const DefaultStatusPolicy = StatusPolicyPercent

// IsValid returns true if the policy is recognised.
func (p StatusPolicy) IsValid() bool {
	switch p {
	case StatusPolicyPercent, StatusPolicySimilarity:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p StatusPolicy) String() string {
	return string(p)
}

// ParseStatusPolicy parses a policy name, accepting the "A"/"B" aliases.
// An empty string yields DefaultStatusPolicy.
func ParseStatusPolicy(s string) (StatusPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultStatusPolicy, true
	case "percent", "a":
		return StatusPolicyPercent, true
	case "similarity", "b":
		return StatusPolicySimilarity, true
	default:
		return "", false
	}
}

// Framework pairs a checklist with the policy used to classify its matches.
type Framework struct {
	// Name is the lookup key, lower case (e.g. "gri").
	Name string

	// Title is the display name used in prompts (e.g. "GRI").
	Title string

	// Policy is the status classification policy for this framework.
	Policy StatusPolicy

	// Checklist holds the framework requirements.
	Checklist *Checklist
}

// DisplayName returns the title, or the upper-cased name when no title is set.
func (f *Framework) DisplayName() string {
	if f.Title != "" {
		return f.Title
	}
	return strings.ToUpper(f.Name)
}
