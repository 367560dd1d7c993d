package types

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"

	// SourceFallback marks a response produced without the provider.
	SourceFallback = "fallback"
)

// ChatMessage is one conversation turn. History lives with the client and
// is never stored.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PurchasedItem carries at least a name; other item fields are ignored.
type PurchasedItem struct {
	Name string `json:"name"`
}

type ChatRequest struct {
	PurchasedItems   []PurchasedItem `json:"purchasedItems"`
	PreviousMessages []ChatMessage   `json:"previousMessages"`
}

// ChatResponse always carries a message. Error and ErrorCode are set only
// when the provider was rate limited and the fallback answered instead.
type ChatResponse struct {
	Message   string `json:"message"`
	Role      string `json:"role"`
	Source    string `json:"source"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}
