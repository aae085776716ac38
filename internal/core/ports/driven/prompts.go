package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAdviceSystem is the system prompt for per-requirement advice.
	// Placeholder: %s framework title.
	PromptAdviceSystem = "advice_system"

	// PromptAdviceUser asks how to improve a disclosure given its best excerpt.
	// Placeholders: %s framework title, %s requirement question, %s excerpt.
	PromptAdviceUser = "advice_user"

	// PromptImproveSystem asks for a JSON {"advice": "..."} tip for a requirement.
	// Placeholder: %s framework title.
	PromptImproveSystem = "improve_system"

	// PromptDraftSystem asks for a JSON {"draft": "..."} disclosure paragraph.
	// Placeholder: %s framework title.
	PromptDraftSystem = "draft_system"

	// PromptSummarySystem asks for a JSON {"summary": [...]} of 3 to 5 bullets.
	// This prompt has no format placeholders.
	PromptSummarySystem = "summary_system"

	// PromptChatSystem is the system prompt for questions about an indexed report.
	// Placeholders: %s document name, %s retrieved context.
	PromptChatSystem = "chat_system"

	// PromptFollowUpSystem asks for 2 to 3 numbered follow-up questions.
	// This prompt has no format placeholders.
	PromptFollowUpSystem = "followup_system"
)
