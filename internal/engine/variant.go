package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Variant holds the stakes and table size for a game type.
type Variant struct {
	Slug          string
	SmallBlind    int
	BigBlind      int
	Ante          int
	MaxPlayers    int
	StartingStack int
}

// Validate checks the variant is playable.
func (v Variant) Validate() error {
	if v.Slug == "" {
		return fmt.Errorf("variant slug is required")
	}
	if v.SmallBlind <= 0 || v.BigBlind < v.SmallBlind {
		return fmt.Errorf("variant %s: blinds must satisfy 0 < small <= big", v.Slug)
	}
	if v.Ante < 0 {
		return fmt.Errorf("variant %s: ante must be non-negative", v.Slug)
	}
	if v.MaxPlayers < 2 || v.MaxPlayers > 10 {
		return fmt.Errorf("variant %s: max players must be between 2 and 10", v.Slug)
	}
	if v.StartingStack <= 0 {
		return fmt.Errorf("variant %s: starting stack must be positive", v.Slug)
	}
	return nil
}

// HeadsUp reports whether the variant seats exactly two.
func (v Variant) HeadsUp() bool {
	return v.MaxPlayers == 2
}

var (
	variantsMu sync.RWMutex
	variants   = map[string]Variant{
		"nlhe-1-2":       {Slug: "nlhe-1-2", SmallBlind: 1, BigBlind: 2, MaxPlayers: 6, StartingStack: 1000},
		"nlhe-hu-1-2":    {Slug: "nlhe-hu-1-2", SmallBlind: 1, BigBlind: 2, MaxPlayers: 2, StartingStack: 1000},
		"nlhe-5-10":      {Slug: "nlhe-5-10", SmallBlind: 5, BigBlind: 10, MaxPlayers: 6, StartingStack: 1000},
		"nlhe-5-10-ante": {Slug: "nlhe-5-10-ante", SmallBlind: 5, BigBlind: 10, Ante: 1, MaxPlayers: 9, StartingStack: 2000},
	}
)

// RegisterVariant adds or replaces a variant in the registry.
func RegisterVariant(v Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}
	variantsMu.Lock()
	defer variantsMu.Unlock()
	variants[v.Slug] = v
	return nil
}

// LookupVariant finds a registered variant by slug.
func LookupVariant(slug string) (Variant, error) {
	variantsMu.RLock()
	defer variantsMu.RUnlock()
	v, ok := variants[slug]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, slug)
	}
	return v, nil
}

// Variants lists registered slugs in sorted order.
func Variants() []string {
	variantsMu.RLock()
	defer variantsMu.RUnlock()
	out := make([]string, 0, len(variants))
	for slug := range variants {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}
