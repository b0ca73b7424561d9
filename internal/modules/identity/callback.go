package identity

import (
	"fmt"
	"net/url"
	"strings"
)

// CallbackTokens are the session tokens an OAuth redirect carries in its
// URL fragment.
type CallbackTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    string
	TokenType    string
}

// ParseCallback extracts tokens from the fragment of an OAuth redirect URL.
// A URL without a fragment, or with a fragment that carries no access token,
// returns ok=false and no error.
func ParseCallback(raw string) (CallbackTokens, bool, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return CallbackTokens{}, false, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	fragment := u.Fragment
	if fragment == "" {
		return CallbackTokens{}, false, nil
	}
	values, err := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if err != nil {
		return CallbackTokens{}, false, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	tokens := CallbackTokens{
		AccessToken:  values.Get("access_token"),
		RefreshToken: values.Get("refresh_token"),
		ExpiresIn:    values.Get("expires_in"),
		TokenType:    values.Get("token_type"),
	}
	if tokens.AccessToken == "" {
		return CallbackTokens{}, false, nil
	}
	return tokens, true, nil
}
