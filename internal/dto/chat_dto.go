package dto

type ChatRequest struct {
	SessionId  string `json:"session_id" validate:"required"`
	Message    string `json:"message" validate:"required,min=1,max=2000"`
	CustomerId int64  `json:"customer_id" validate:"omitempty,gt=0"`
}

type ChatResponse struct {
	SessionId string `json:"session_id"`
	Answer    string `json:"answer"`
}

// ChatTurnMessage travels on the in-process bus from the chat service to the
// turn consumer after the answer has been returned.
type ChatTurnMessage struct {
	SessionId   string `json:"session_id"`
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
}
