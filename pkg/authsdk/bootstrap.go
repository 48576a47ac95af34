package authsdk

import (
	"context"
	"net/http"
)

// Bootstrap creates the first admin user. It only succeeds while the
// service has no users.
func (c *SDKClient) Bootstrap(
	ctx context.Context,
	token string,
	req BootstrapRequest,
) (*BootstrapResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap", req,
		map[string]string{"X-Bootstrap-Token": token})
	if err != nil {
		return nil, err
	}

	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated, KindTokenInvalid, unexpectedMessage); err != nil {
		return nil, err
	}
	return &out, nil
}
