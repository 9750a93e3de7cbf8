package postgres

import (
	"encoding/json"
	"time"
)

func marshalIDs(ids []string) []byte {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return []byte("[]")
	}
	return b
}

// unmarshalIDs decodes a stored task id set. A decode failure is returned
// rather than swallowed: treating corrupt data as an empty set would
// silently deactivate the wager bound to it.
func unmarshalIDs(data []byte) ([]string, error) {
	ids := []string{}
	if len(data) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
