package domain

import "fmt"

// MalformedPolicy decides what happens to a remote product with no image or
// no unit amount.
type MalformedPolicy string

const (
	// PolicyFail surfaces a *MalformedProductError to the page.
	PolicyFail MalformedPolicy = "fail"
	// PolicySkip drops the product from listings and resolves it to null.
	PolicySkip MalformedPolicy = "skip"
	// PolicyPlaceholder substitutes a placeholder image and an unavailable price.
	PolicyPlaceholder MalformedPolicy = "placeholder"
)

// ParseMalformedPolicy validates s.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch p := MalformedPolicy(s); p {
	case PolicyFail, PolicySkip, PolicyPlaceholder:
		return p, nil
	default:
		return "", fmt.Errorf("unknown malformed product policy %q (want fail, skip or placeholder)", s)
	}
}

// FallbackMode is how a detail request for an id outside the pre-built set
// is served.
type FallbackMode string

const (
	// FallbackTrue serves a loading page at once and resolves in the background.
	FallbackTrue FallbackMode = "true"
	// FallbackBlocking resolves before responding.
	FallbackBlocking FallbackMode = "blocking"
	// FallbackFalse answers 404 for anything not pre-built.
	FallbackFalse FallbackMode = "false"
)

// ParseFallbackMode validates s.
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch m := FallbackMode(s); m {
	case FallbackTrue, FallbackBlocking, FallbackFalse:
		return m, nil
	default:
		return "", fmt.Errorf("unknown fallback mode %q (want true, blocking or false)", s)
	}
}
