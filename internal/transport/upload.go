package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload submits a file (screenshot) for analysis as a multipart form with a
// single "file" field. Only the filename is sent as metadata.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (RiskReport, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return RiskReport{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return RiskReport{}, err
	}
	if err := form.Close(); err != nil {
		return RiskReport{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL("/upload"), &body)
	if err != nil {
		return RiskReport{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return RiskReport{}, classify(ctx, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return RiskReport{}, err
	}

	var report RiskReport
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		return RiskReport{}, &Error{Detail: "malformed upload response: " + err.Error()}
	}
	return report, nil
}
