package graphql

import (
	"encoding/json"
	"errors"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/internal/twitterfmt"
)

// hasResponseData returns true if the JSON body contains a non-null "data" field.
func hasResponseData(body []byte) bool {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return false
	}
	return len(envelope.Data) > 0 && string(envelope.Data) != "null"
}

// isAlreadyFavorited matches the error FavoriteTweet returns for a post the
// account has liked before.
func isAlreadyFavorited(err error) bool {
	var apiErr *timelines.APIError
	return errors.As(err, &apiErr) && apiErr.Code == twitterfmt.Code139
}
