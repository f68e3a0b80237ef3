package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files or embed
// them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnalysisSystem is the system instruction for email
	// classification. The template must contain the ContextPlaceholder
	// slot where retrieved policies are substituted.
	PromptAnalysisSystem = "analysis_system"
)

// ContextPlaceholder marks the single substitution point for retrieved
// policy text inside the system prompt. Retrieved text is only ever
// inserted here, never concatenated into the instructions ad hoc.
const ContextPlaceholder = "{context}"
