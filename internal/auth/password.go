package auth

import "golang.org/x/crypto/bcrypt"

// placeholderHash is a fixed bcrypt digest that matches no password. Failure
// paths that have no real hash to compare against (unknown username, locked
// account) still run a full bcrypt comparison against it, so their wall-clock
// cost is indistinguishable from a wrong-password rejection.
const placeholderHash = "$2a$12$wSXbSxTzhZTDd9d5pVnTdeJ0kQ9kXmVxHy3dQ7aG1uBOq0lZ0y0yS"

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ComparePlaceholder burns one bcrypt verification against the fixed
// placeholder digest and always reports failure.
func ComparePlaceholder(plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(placeholderHash), []byte(plain)); err != nil {
		return err
	}
	return bcrypt.ErrMismatchedHashAndPassword
}
