package ports

// PasswordHasher hides the hashing scheme behind a minimal surface.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. It must run in time
	// independent of where the mismatch occurs.
	Verify(plain, hash string) bool
}
