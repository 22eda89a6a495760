// Package service holds stateless domain capabilities that do not belong
// to a single entity.
package service

// PasswordHasher abstracts the hashing algorithm so the domain never
// depends on a concrete crypto library.
type PasswordHasher interface {
	// Hash produces an opaque salted hash from a plaintext password.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches the stored hash.
	Verify(hash, plain string) bool
}
