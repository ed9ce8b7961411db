// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vision extracts Markdown text from page images through an
// OpenAI-compatible chat-completion endpoint.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/doc2md/internal/render"
)

// extractionPrompt is the instruction sent alongside every page image.
const extractionPrompt = "Please extract all text from this image and convert it to Markdown format, " +
	"attempting to preserve the original document formatting. " +
	"The output should be a Markdown representation of the original image or document text. " +
	"If there are tables in the image, recreate them as Markdown tables in the output. " +
	"Formatted Markdown output only, no HTML."

// Client calls a chat-completion endpoint that accepts image content parts.
// An empty APIKey omits the Authorization header. A nil HTTPClient falls
// back to http.DefaultClient, which carries no timeout.
type Client struct {
	Endpoint   string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

// chatRequest is the chat-completion request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage is one role-tagged, multi-part message.
type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

// contentPart is either a text part or an image_url part.
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

// imageRef wraps the image data URL.
type imageRef struct {
	URL string `json:"url"`
}

// chatResponse is the subset of the chat-completion response the client reads.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// chatChoice is one completion choice.
type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// ExtractMarkdown sends one page image to the endpoint and returns the text
// content of the first response choice. Any failure is terminal; the client
// never retries.
func (c *Client) ExtractMarkdown(ctx context.Context, page render.PageImage) (string, error) {
	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: extractionPrompt},
					{Type: "image_url", ImageURL: &imageRef{URL: dataURL(page.Data, page.Format)}},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling extraction endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("extraction endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding extraction response: %w", err)
	}
	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("extraction endpoint returned no choices")
	}

	content := cResp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("extraction endpoint returned empty content")
	}
	return content, nil
}

// dataURL embeds image bytes as a base64 data URL. The MIME subtype comes
// from the format tag, with jpg normalized to jpeg; other tags pass through.
func dataURL(data []byte, format string) string {
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	if ext == "jpg" {
		ext = "jpeg"
	}
	return "data:image/" + ext + ";base64," + base64.StdEncoding.EncodeToString(data)
}
