package model

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
