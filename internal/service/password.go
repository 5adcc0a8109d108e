package service

import "golang.org/x/crypto/bcrypt"

// BcryptVerifier hashes and verifies link passphrases with bcrypt.
type BcryptVerifier struct {
	cost int
}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{cost: bcrypt.DefaultCost}
}

// Hash returns the bcrypt hash of the passphrase.
func (v *BcryptVerifier) Hash(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), v.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the candidate matches the stored hash.
func (v *BcryptVerifier) Verify(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

var _ PasswordVerifier = (*BcryptVerifier)(nil)
