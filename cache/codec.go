package cache

import (
	"bytes"
	"encoding/json"
)

// encodeEntries serializes the cache as a JSON object keyed by phrase.
func encodeEntries(entries map[string]Entry) ([]byte, error) {
	if entries == nil {
		entries = map[string]Entry{}
	}
	return json.Marshal(entries)
}

// decodeEntries parses data produced by encodeEntries. Blank input decodes to
// an empty cache.
func decodeEntries(data []byte) (map[string]Entry, error) {
	entries := make(map[string]Entry)
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		// "null"
		entries = make(map[string]Entry)
	}
	return entries, nil
}
