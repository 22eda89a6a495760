package security

import "testing"

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher()
	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals plaintext")
	}
	if !h.Verify(hash, "secret123") {
		t.Error("Verify rejected the correct password")
	}
	if h.Verify(hash, "wrong") {
		t.Error("Verify accepted the wrong password")
	}
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher()
	a, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}
