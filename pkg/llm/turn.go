package llm

// Role identifies who authored a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a chat history. Turns are values and are never
// edited once appended.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserTurn builds a Turn authored by the user.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn builds a Turn authored by the model.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}

// ConversationTurn is one completed exchange: the user's message and the
// model's reply, in that order.
type ConversationTurn struct {
	Request  Turn `json:"request"`
	Response Turn `json:"response"`
}
