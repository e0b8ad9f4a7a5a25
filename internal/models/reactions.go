package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// Reactions maps an emoji to the ids of the users reacting with it.
// It is stored as a JSON document on the comment row.
type Reactions map[string][]uint

func (r Reactions) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Reactions) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*r = Reactions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("reactions: unsupported scan type %T", src)
	}
	out := Reactions{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("reactions: %w", err)
		}
	}
	*r = out
	return nil
}

// Has reports whether userID is in emoji's reactor set.
func (r Reactions) Has(emoji string, userID uint) bool {
	return slices.Contains(r[emoji], userID)
}

// EmojiOf returns the emoji userID currently reacts with, if any.
func (r Reactions) EmojiOf(userID uint) (string, bool) {
	for emoji, users := range r {
		if slices.Contains(users, userID) {
			return emoji, true
		}
	}
	return "", false
}

// Without returns a copy with userID removed from every set. Empty sets are dropped.
func (r Reactions) Without(userID uint) Reactions {
	out := make(Reactions, len(r))
	for emoji, users := range r {
		kept := make([]uint, 0, len(users))
		for _, u := range users {
			if u != userID {
				kept = append(kept, u)
			}
		}
		if len(kept) > 0 {
			out[emoji] = kept
		}
	}
	return out
}
