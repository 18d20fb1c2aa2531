package crypto

import "golang.org/x/crypto/bcrypt"

// dummyHash keeps failed lookups as expensive as failed comparisons so the
// login path does not leak whether an email exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("devtrack-dummy-credential"), bcrypt.DefaultCost)

// HashPassword hashes plaintext using bcrypt.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// ComparePassword compares plaintext to hashed secret.
func ComparePassword(hash []byte, plain string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain))
}

// CompareDummy burns a bcrypt comparison against a throwaway hash. It always
// fails; callers use it on the unknown-account path.
func CompareDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
