package domain

// Passage is a retrieved corpus chunk with its similarity to the query.
type Passage struct {
	Document string
	Page     int
	Text     string
	Score    float64
}

// Retrieval is the result of a top-K corpus lookup.
type Retrieval struct {
	Passages []Passage

	// Citations are formatted as "<doc>, pp. <sorted unique pages>", one per document.
	Citations []string
}

// ChatMessage is a single turn of a conversation about an indexed document.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatAnswer is the assistant reply with its sources.
type ChatAnswer struct {
	Answer    string
	Sources   []string
	FollowUps []string
}
