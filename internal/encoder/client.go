// Package encoder talks to the face detection and encoding service.
//
// The service accepts an image as a multipart upload and answers with every
// face it found: a bounding box, named landmark groups and a fixed-length
// encoding.
package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kozaktomas/face-morph/internal/chain"
)

const (
	defaultEncoderURL   = "http://localhost:8000"
	defaultEncoderModel = "buffalo_l" // model name for reference only
)

// ErrNoFace is returned when the service finds no usable face in an image.
var ErrNoFace = errors.New("no face found")

// Client computes face encodings using the encoding server
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a new encoder client
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultEncoderURL
	}
	if model == "" {
		model = defaultEncoderModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

// Model returns the model name being used
func (c *Client) Model() string {
	return c.model
}

// postMultipartImage constructs a multipart form with the image data and posts it to the given endpoint.
// The part carries an explicit Content-Type based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectFaces detects faces and returns their landmarks and encodings
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) (*FaceResponse, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &faceResp, nil
}

// Encode returns the encoding of the first detected face.
func (c *Client) Encode(ctx context.Context, imageData []byte) (chain.Vector, error) {
	resp, err := c.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, err
	}
	if len(resp.Faces) == 0 || len(resp.Faces[0].Embedding) == 0 {
		return nil, ErrNoFace
	}
	return chain.Vector(resp.Faces[0].Embedding), nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	return "application/octet-stream"
}
