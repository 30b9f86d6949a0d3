package storage

import (
	"encoding/json"
	"fmt"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func encodeItems(items map[string]int) ([]byte, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return data, nil
}

func decodeItems(data []byte) (map[string]int, error) {
	items := make(map[string]int)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}
