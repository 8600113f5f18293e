package wizard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrListFull is returned when an add would exceed a list's maximum
	ErrListFull = errors.New("list is full")
	// ErrDuplicateEntry is returned when an add repeats an existing entry
	ErrDuplicateEntry = errors.New("entry already added")
	// ErrEmptyEntry is returned when an add carries only whitespace
	ErrEmptyEntry = errors.New("entry is empty")
)

// AddBounded appends item to list unless it is empty, already present or list holds limit entries.
// The input slice is never modified.
func AddBounded(list []string, item string, limit int) ([]string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return list, ErrEmptyEntry
	}
	if slices.Contains(list, item) {
		return list, ErrDuplicateEntry
	}
	if len(list) >= limit {
		return list, ErrListFull
	}
	return append(slices.Clip(list), item), nil
}

// checkBounded replays items through AddBounded and reports the first entry it refuses
func checkBounded(field string, items []string, limit int, messages map[string]string) []FieldError {
	var list []string
	for _, item := range items {
		next, err := AddBounded(list, item, limit)
		if err != nil {
			return []FieldError{{Field: field, Message: boundedMessage(field, limit, err, messages)}}
		}
		list = next
	}
	return nil
}

func boundedMessage(field string, limit int, err error, messages map[string]string) string {
	key, fallback := field+".unique", field+" must not contain duplicates"
	switch {
	case errors.Is(err, ErrListFull):
		key, fallback = field+".max", fmt.Sprintf("%s must not exceed %d", field, limit)
	case errors.Is(err, ErrEmptyEntry):
		key, fallback = field+"[].required", field+" must not contain empty entries"
	}
	if msg, ok := messages[key]; ok {
		return msg
	}
	return fallback
}
