package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// UploadImage posts the image as multipart form data under the "image"
// field and returns the hosted URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return UploadResponse{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResponse{}, err
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, err
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/events/upload-image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return UploadResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if strings.TrimSpace(c.Token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.Token))
	}

	var resp UploadResponse
	if err := c.Do(req, &resp); err != nil {
		return UploadResponse{}, err
	}
	return resp, nil
}
