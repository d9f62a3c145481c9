package proposal

import (
	"cmp"
	"encoding"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Key identifies a proposal across the proposal list and the quality
// feed, which are fetched independently.
type Key struct {
	ProviderID    string
	ServiceType   string
	Compatibility int
}

var (
	_ encoding.TextMarshaler   = Key{}
	_ encoding.TextUnmarshaler = (*Key)(nil)
)

// KeyOf returns the identity of p.
func KeyOf(p Proposal) Key {
	return Key{ProviderID: p.ProviderID, ServiceType: p.ServiceType, Compatibility: p.Compatibility}
}

func (k Key) String() string {
	return k.ProviderID + "|" + k.ServiceType + "|" + strconv.Itoa(k.Compatibility)
}

// MarshalText lets Key be used as a JSON value and map key.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the form produced by MarshalText.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	// providerId never contains '|', serviceType is a bare word.
	parts := strings.Split(s, "|")
	if len(parts) != 3 || parts[0] == "" {
		return Key{}, fmt.Errorf("invalid proposal key: %q", s)
	}
	compat, err := strconv.Atoi(parts[2])
	if err != nil {
		return Key{}, fmt.Errorf("invalid proposal key compatibility %q: %w", parts[2], err)
	}
	return Key{ProviderID: parts[0], ServiceType: parts[1], Compatibility: compat}, nil
}

// Compare orders proposals by country, then by key fields. It returns 0
// only when all four fields are equal.
func Compare(a, b UIProposal) int {
	if c := cmp.Compare(a.Country, b.Country); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ProviderID, b.ProviderID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ServiceType, b.ServiceType); c != 0 {
		return c
	}
	return cmp.Compare(a.Compatibility, b.Compatibility)
}

// Sort sorts in place with Compare. Stable, so sorting twice is a no-op.
func Sort(ps []UIProposal) {
	slices.SortStableFunc(ps, Compare)
}
