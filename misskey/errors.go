package misskey

import (
	"encoding/json"
	"errors"

	timelines "github.com/anatolykoptev/go-timelines"
)

// Error codes the client acts on.
const (
	codeCredentialRequired   = "CREDENTIAL_REQUIRED"
	codeAuthenticationFailed = "AUTHENTICATION_FAILED"
	codeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	codeAlreadyFavorited     = "ALREADY_FAVORITED"
	codeNoSuchNote           = "NO_SUCH_NOTE"
)

// errorCode extracts error.code from a Misskey error body.
func errorCode(body []byte) string {
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &resp) != nil {
		return ""
	}
	return resp.Error.Code
}

// invalidatesSession reports whether code means the token is no longer valid.
func invalidatesSession(code string) bool {
	return code == codeCredentialRequired || code == codeAuthenticationFailed
}

func hasCode(err error, code string) bool {
	var apiErr *timelines.APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
