package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// newRequest builds a request with an optional JSON body. The body is a
// bytes.Reader, so GetBody is set and the request can be replayed.
func (c *SDKClient) newRequest(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// doRequest performs an unauthenticated request with the client's cookie jar.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body, headers)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	return resp, nil
}

// decodeJSON decodes a JSON response into target, or converts a non-expected
// status into an *Error. on401 and fallback feed errorFromResponse.
func decodeJSON(resp *http.Response, target any, expectedStatus int, on401 Kind, fallback string) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return networkError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != expectedStatus {
		return errorFromResponse(resp.StatusCode, bodyBytes, on401, fallback)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// drain discards the rest of a response so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
