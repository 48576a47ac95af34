package authsdk

import (
	"context"
	"net/http"
)

// RegisterPath is the public sign-up endpoint.
const RegisterPath = "/auth/register"

// Register creates a client account. It does not log in; call Login with the
// same credentials afterwards.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, RegisterPath, req, nil)
	if err != nil {
		return nil, err
	}

	var out User
	if err := decodeJSON(resp, &out, http.StatusCreated, KindTokenInvalid, unexpectedMessage); err != nil {
		return nil, err
	}
	return &out, nil
}
