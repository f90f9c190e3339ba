package engine

import "testing"

func TestNewSessionTokenShape(t *testing.T) {
	token, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	other, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if token == other {
		t.Errorf("two generated tokens collided")
	}
}

func TestSessionTokenMatches(t *testing.T) {
	token, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	hash := HashSessionToken(token)

	if hash == token {
		t.Errorf("hash must differ from the plaintext token")
	}
	if !SessionTokenMatches(hash, token) {
		t.Errorf("token should match its own hash")
	}
	if SessionTokenMatches(hash, token+"x") {
		t.Errorf("modified token must not match")
	}
	if SessionTokenMatches("", token) {
		t.Errorf("empty stored hash must never match")
	}
}
