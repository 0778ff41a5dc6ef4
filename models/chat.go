package models

// ChatRequest is the payload coming from the messaging channel into /api/chat.
type ChatRequest struct {
	Phone   string `json:"phone"`   // stable identity of the conversation
	Message string `json:"message"` // the user's text
}

// ChatResponse is what the handler returns to the channel.
type ChatResponse struct {
	Phone    string `json:"phone"`
	Response string `json:"response"`
}
