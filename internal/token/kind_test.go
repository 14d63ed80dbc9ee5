package token_test

import (
	"testing"

	"yieldc/internal/token"
)

func TestEveryKeywordRoundTrips(t *testing.T) {
	for k := token.KwNamespace; k <= token.KwOut; k++ {
		if !k.IsKeyword() {
			t.Errorf("%v: IsKeyword = false", k)
		}
		got, ok := token.LookupKeyword(k.String())
		if !ok || got != k {
			t.Errorf("LookupKeyword(%q) = %v, %v; want %v", k.String(), got, ok, k)
		}
	}
	if _, ok := token.LookupKeyword("Yield"); ok {
		t.Error("keywords must be case-sensitive")
	}
	if token.Plus.IsKeyword() || token.Ident.IsKeyword() {
		t.Error("operators and identifiers are not keywords")
	}
}
