package completion

import sonic "github.com/bytedance/sonic"

// Wire types for the OpenAI-compatible chat completions endpoint. Grounded
// providers return a citations array alongside the choices.

type wirePayload struct {
	Model            string                `json:"model"`
	Messages         []wireMessage         `json:"messages"`
	Temperature      float64               `json:"temperature"`
	MaxTokens        int                   `json:"max_tokens,omitempty"`
	WebSearchOptions *wireWebSearchOptions `json:"web_search_options,omitempty"`
}

// wireMessage serializes content as a plain string for text-only messages
// and as a part array when an image rides along.
type wireMessage struct {
	Role         string            `json:"-"`
	Content      string            `json:"-"`
	ContentParts []wireContentPart `json:"-"`
}

func (m wireMessage) MarshalJSON() ([]byte, error) {
	if len(m.ContentParts) > 0 {
		return sonic.Marshal(struct {
			Role    string            `json:"role"`
			Content []wireContentPart `json:"content"`
		}{Role: m.Role, Content: m.ContentParts})
	}
	return sonic.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: m.Role, Content: m.Content})
}

type wireContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

type wireWebSearchOptions struct {
	SearchContextSize string `json:"search_context_size,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations,omitempty"`
}
