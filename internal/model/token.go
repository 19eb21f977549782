package model

import (
	"slices"
	"time"
)

// Ability constants for access tokens.
const (
	AbilityAll           = "*"
	AbilityArticlesWrite = "articles:write"
	AbilityProfileWrite  = "profile:write"
)

// DefaultTokenName is the name given to tokens issued at login and registration.
const DefaultTokenName = "api-token"

// ValidAbilities contains all recognised ability values.
var ValidAbilities = []string{AbilityAll, AbilityArticlesWrite, AbilityProfileWrite}

// AccessToken is a persisted bearer token. Only the hash of the secret is stored.
type AccessToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	TokenHash   string     `json:"-"`
	TokenPrefix string     `json:"token_prefix"`
	Abilities   []string   `json:"abilities"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Can checks if the token grants an ability. "*" grants everything.
func (t *AccessToken) Can(ability string) bool {
	return hasAbility(t.Abilities, ability)
}

// AuthContext holds the identity resolved from a bearer token.
// It is injected into the request context by the auth middleware.
type AuthContext struct {
	TokenID     string
	TokenPrefix string
	UserID      string
	Abilities   []string
}

// Can checks if the auth context grants an ability.
func (a *AuthContext) Can(ability string) bool {
	return hasAbility(a.Abilities, ability)
}

func hasAbility(abilities []string, ability string) bool {
	if slices.Contains(abilities, AbilityAll) {
		return true
	}
	return slices.Contains(abilities, ability)
}
