package handler

// ErrorResponse стандартная структура ответа об ошибке.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse ответ с одним информационным сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse список публичных URL загруженных файлов.
type UploadResponse struct {
	Files []string `json:"files"`
}

// PromptRequest тело запроса для continue/end, когда оно передается как JSON.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}
