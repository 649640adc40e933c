// Package interact abstracts the confirm / prompt / notify dialogs the
// organizer needs from its user.
package interact

// Interactor is the user-interaction capability
type Interactor interface {
	// Confirm asks a yes/no question; false means declined
	Confirm(message string) bool
	// PromptText asks for a line of text; ok is false when cancelled
	PromptText(message, def string) (answer string, ok bool)
	// Notify shows a message to the user
	Notify(message string)
}
