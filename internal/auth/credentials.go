// Package auth is the credential verifier: bcrypt hashing plus the
// stateless login check. No tokens or sessions are issued; every
// request that needs a credential check performs it in full.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/KamalSai3/KS-Events/internal/models"
	"github.com/KamalSai3/KS-Events/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("Invalid USN or password")
	ErrAccountDeactivated = errors.New("Account is deactivated")
)

// HashPassword derives a salted bcrypt hash from the plaintext.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// StudentSource looks up students for login.
type StudentSource interface {
	GetStudentByUSN(ctx context.Context, usn string) (*models.Student, error)
}

type Verifier struct {
	DB StudentSource
}

func NewVerifier(db StudentSource) *Verifier {
	return &Verifier{DB: db}
}

// Login verifies a USN/password pair. A deactivated account is
// rejected even when the credentials are correct.
func (v *Verifier) Login(ctx context.Context, usn, password string) (*models.Student, error) {
	student, err := v.DB.GetStudentByUSN(ctx, usn)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(password, student.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !student.IsActive {
		return nil, ErrAccountDeactivated
	}
	return student, nil
}
