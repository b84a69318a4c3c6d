package twitterfmt

import (
	"bytes"
	"encoding/json"

	timelines "github.com/anatolykoptev/go-timelines"
)

// ParseIDList decodes the id-list endpoints called with stringify_ids=true.
// blocks/ids and mutes/users/ids answer {"ids":[...]}, friendships/no_retweets/ids
// a bare array.
func ParseIDList(body []byte) ([]timelines.PersonID, error) {
	var raw []string
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, err
		}
	} else {
		var obj struct {
			IDs []string `json:"ids"`
		}
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, err
		}
		raw = obj.IDs
	}
	ids := make([]timelines.PersonID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, timelines.TwitterUserID(id))
	}
	return ids, nil
}
