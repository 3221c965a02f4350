// Package account handles registration and authentication for parents
// and children, including family-code generation and verification.
package account

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/store"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidFamilyCode  = errors.New("family code not recognized")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// familyCodeAlphabet deliberately has no lowercase letters; codes are
// matched case-sensitively and are always generated uppercase.
const (
	familyCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	familyCodeLength   = 6
	bcryptCost         = 12
)

// dummyHash is compared against when an email is unknown so that
// authentication takes the same time either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("kidquest-dummy"), bcryptCost)

type Service struct {
	users *store.UserStore
}

func NewService(users *store.UserStore) *Service {
	return &Service{users: users}
}

// RegisterParent creates a parent account with a freshly generated
// family code. Email uniqueness is checked case-insensitively by
// normalizing to lowercase before storage.
func (s *Service) RegisterParent(email, name, password string) (*model.User, error) {
	email = normalizeEmail(email)

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := s.generateFamilyCode()
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(email, name, model.RoleParent, string(hash), &code, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create parent: %w", err)
	}
	return user, nil
}

// RegisterChild creates a child account linked to the parent owning the
// given family code. The code must match exactly as issued.
func (s *Service) RegisterChild(email, name, password, familyCode string, age *int) (*model.User, error) {
	email = normalizeEmail(email)

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	parent, err := s.users.GetByFamilyCode(familyCode)
	if err != nil {
		return nil, fmt.Errorf("look up family code: %w", err)
	}
	if parent == nil {
		return nil, ErrInvalidFamilyCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(email, name, model.RoleChild, string(hash), nil, &parent.ID, age)
	if err != nil {
		return nil, fmt.Errorf("create child: %w", err)
	}
	return user, nil
}

// Authenticate verifies an email and password pair. Unknown emails and
// wrong passwords both return ErrInvalidCredentials, and the bcrypt
// comparison runs in both cases.
func (s *Service) Authenticate(email, password string) (*model.User, error) {
	email = normalizeEmail(email)

	hash, err := s.users.GetCredentialHash(email)
	if err != nil {
		return nil, fmt.Errorf("look up credentials: %w", err)
	}

	compareAgainst := []byte(hash)
	if hash == "" {
		compareAgainst = dummyHash
	}
	if err := bcrypt.CompareHashAndPassword(compareAgainst, []byte(password)); err != nil || hash == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) generateFamilyCode() (string, error) {
	// Collisions are vanishingly rare at 36^6 but the column is unique,
	// so retry a handful of times before giving up.
	for range 10 {
		code, err := randomCode(familyCodeLength)
		if err != nil {
			return "", fmt.Errorf("generate family code: %w", err)
		}
		taken, err := s.users.FamilyCodeExists(code)
		if err != nil {
			return "", fmt.Errorf("check family code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not generate unique family code")
}

func randomCode(n int) (string, error) {
	var b strings.Builder
	for range n {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(familyCodeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(familyCodeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
