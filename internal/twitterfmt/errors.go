package twitterfmt

import (
	"encoding/json"
	"strconv"
)

// ErrorClass categorizes Twitter API error responses for targeted handling.
type ErrorClass int

const (
	ClassNone             ErrorClass = iota
	ClassBanned                      // 88: rate limit abuse
	ClassSuspended                   // 64: account suspended
	ClassLocked                      // 326: account locked, captcha needed
	ClassCSRF                        // 353: csrf token mismatch
	ClassAuthExpired                 // 32: could not authenticate
	ClassInvalidToken                // 89: invalid or expired token
	ClassBlocked                     // 161: blocked from performing action
	ClassNotAuthorized               // 179, 219: not authorized
	ClassInternal                    // 131: Twitter internal error
	ClassNotFound                    // 144: no status found
	ClassAlreadyFavorited            // 139: already favorited
	ClassOther                       // any other code
)

// Code139 is the "already favorited" code, which favorite calls treat as success.
const Code139 = "139"

// ClassifyError inspects a response body for known Twitter error codes and
// returns the class together with the first code found.
func ClassifyError(body []byte) (ErrorClass, int) {
	var errResp struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return ClassNone, 0
	}

	for _, e := range errResp.Errors {
		switch e.Code {
		case 88:
			return ClassBanned, e.Code
		case 64:
			return ClassSuspended, e.Code
		case 326:
			return ClassLocked, e.Code
		case 353:
			return ClassCSRF, e.Code
		case 32:
			return ClassAuthExpired, e.Code
		case 89:
			return ClassInvalidToken, e.Code
		case 161:
			return ClassBlocked, e.Code
		case 179, 219:
			return ClassNotAuthorized, e.Code
		case 131:
			return ClassInternal, e.Code
		case 144:
			return ClassNotFound, e.Code
		case 139:
			return ClassAlreadyFavorited, e.Code
		}
	}
	return ClassOther, errResp.Errors[0].Code
}

// InvalidatesSession reports whether the class means the credentials no
// longer grant access and the account must be re-authenticated.
func (c ErrorClass) InvalidatesSession() bool {
	switch c {
	case ClassAuthExpired, ClassInvalidToken, ClassSuspended, ClassLocked:
		return true
	}
	return false
}

// CodeString formats an error code for APIError.Code; zero means none.
func CodeString(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
