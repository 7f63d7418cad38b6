package decks

import "errors"

// ErrInvalidGrant is returned by membership stores handed a zero SystemGrant.
var ErrInvalidGrant = errors.New("membership change requires a system grant")

// SystemGrant is the capability the membership store requires before it removes
// a card instance from a deck that the caller does not own. The zero value grants
// nothing; only NewSystemGrant produces a usable grant.
type SystemGrant struct {
	issuer string
}

// NewSystemGrant issues a grant on behalf of an internal subsystem.
// The issuer name is recorded by stores for auditing.
func NewSystemGrant(issuer string) SystemGrant {
	if issuer == "" {
		issuer = "system"
	}
	return SystemGrant{issuer: issuer}
}

func (g SystemGrant) Valid() bool {
	return g.issuer != ""
}

func (g SystemGrant) Issuer() string {
	return g.issuer
}

// Authorize returns ErrInvalidGrant unless g was issued by NewSystemGrant.
func (g SystemGrant) Authorize() error {
	if !g.Valid() {
		return ErrInvalidGrant
	}
	return nil
}
