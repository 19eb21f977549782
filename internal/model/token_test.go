package model

import (
	"slices"
	"testing"
)

func TestAccessToken_Can(t *testing.T) {
	testCases := []struct {
		name      string
		abilities []string
		checkFor  string
		want      bool
	}{
		{
			name:      "has exact ability",
			abilities: []string{AbilityArticlesWrite},
			checkFor:  AbilityArticlesWrite,
			want:      true,
		},
		{
			name:      "does not have ability",
			abilities: []string{AbilityArticlesWrite},
			checkFor:  AbilityProfileWrite,
			want:      false,
		},
		{
			name:      "wildcard implies articles",
			abilities: []string{AbilityAll},
			checkFor:  AbilityArticlesWrite,
			want:      true,
		},
		{
			name:      "wildcard implies profile",
			abilities: []string{AbilityAll},
			checkFor:  AbilityProfileWrite,
			want:      true,
		},
		{
			name:      "empty abilities",
			abilities: []string{},
			checkFor:  AbilityArticlesWrite,
			want:      false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token := &AccessToken{Abilities: tc.abilities}
			got := token.Can(tc.checkFor)
			if got != tc.want {
				t.Errorf("Can(%s) = %v, want %v", tc.checkFor, got, tc.want)
			}
		})
	}
}

func TestAuthContext_Can(t *testing.T) {
	testCases := []struct {
		name      string
		abilities []string
		checkFor  string
		want      bool
	}{
		{"has ability", []string{AbilityProfileWrite}, AbilityProfileWrite, true},
		{"wildcard grants all", []string{AbilityAll}, AbilityArticlesWrite, true},
		{"missing ability", []string{AbilityProfileWrite}, AbilityArticlesWrite, false},
		{"nil abilities", nil, AbilityArticlesWrite, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := &AuthContext{Abilities: tc.abilities}
			if got := ctx.Can(tc.checkFor); got != tc.want {
				t.Errorf("Can(%s) = %v, want %v", tc.checkFor, got, tc.want)
			}
		})
	}
}

func TestValidAbilities(t *testing.T) {
	expected := []string{AbilityAll, AbilityArticlesWrite, AbilityProfileWrite}
	for _, ability := range expected {
		if !slices.Contains(ValidAbilities, ability) {
			t.Errorf("ValidAbilities should contain %s", ability)
		}
	}
}
