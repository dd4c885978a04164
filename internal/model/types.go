package model

// CustomField is a user-defined label/value pair appended to a content request.
type CustomField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type StyleOptions struct {
	UseEmoji            bool `json:"useEmoji"`
	SimpleLanguage      bool `json:"simpleLanguage"`
	AcademicLanguage    bool `json:"academicLanguage"`
	BulletPoints        bool `json:"bulletPoints"`
	DiscussionQuestions bool `json:"discussionQuestions"`
}

// ContentRequest is the body of POST /generate-content.
type ContentRequest struct {
	MainTopic      string            `json:"mainTopic" binding:"required,topic"`
	ContentType    string            `json:"contentType" binding:"required,content_type"`
	ContentLength  string            `json:"contentLength" binding:"required,content_length"`
	StyleOptions   StyleOptions      `json:"styleOptions"`
	CustomFields   map[string]string `json:"customFields"`
	TelegramChatID *int64            `json:"telegram_chat_id"`
	TelegramUserID *int64            `json:"telegram_user_id"`
}

const (
	StatusSuccess         = "success"
	StatusPaymentRequired = "payment_required"
)

// ContentResponse covers every body /generate-content answers with, including
// the {"detail": ...} error shape.
type ContentResponse struct {
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	Detail      string `json:"detail,omitempty"`
	InvoiceSent bool   `json:"invoice_sent,omitempty"`
	InvoiceURL  string `json:"invoice_url,omitempty"`
}

type OptionsResponse struct {
	ContentTypes   []string `json:"contentTypes"`
	ContentLengths []string `json:"contentLengths"`
}

type AIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AIChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type AIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Invoice is a Telegram payment request for premium content.
// Price is in the smallest unit of Currency.
type Invoice struct {
	Title          string
	Description    string
	Payload        string
	Currency       string
	Label          string
	Price          int
	StartParameter string
}
