// Package id generates and parses the prefixed, K-sortable identifiers
// used for every stored entity ("order_01h2xcejqtf2nbrexx3vqjhp41").
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

type Prefix string

const (
	PrefixFood  Prefix = "food"
	PrefixOrder Prefix = "order"
	PrefixPromo Prefix = "promo"
	PrefixUser  Prefix = "user"
)

// New generates a new ID string with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

func NewFood() string  { return New(PrefixFood) }
func NewOrder() string { return New(PrefixOrder) }
func NewPromo() string { return New(PrefixPromo) }
func NewUser() string  { return New(PrefixUser) }

// Parse validates s and checks that it carries the expected prefix.
func Parse(s string, expected Prefix) (string, error) {
	if s == "" {
		return "", fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("id: parse %q: %w", s, err)
	}

	if Prefix(tid.Prefix()) != expected {
		return "", fmt.Errorf("id: expected prefix %q, got %q", expected, tid.Prefix())
	}
	return tid.String(), nil
}
