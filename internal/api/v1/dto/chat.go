package dto

// ChatRequestDTO is the payload for POST /api/chat.
type ChatRequestDTO struct {
	Prompt string `json:"prompt" validate:"required"`
}

// ChatResponseDTO carries the generated reply.
type ChatResponseDTO struct {
	Text string `json:"text"`
}

// ErrorResponseDTO is the uniform JSON error body.
type ErrorResponseDTO struct {
	Error string `json:"error"`
}
