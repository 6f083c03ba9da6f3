package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/repo"
	"github.com/Skotchmaster/canteen/pkg/hash"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

// SharedPassword is the single password accepted for every roster entry.
// It is a gate, not a credential.
const SharedPassword = "password"

var (
	ErrValidation         = errors.New("validation")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)

// UserSource is the remote collaborator serving user profiles.
type UserSource interface {
	User(ctx context.Context, id int) (models.User, error)
}

type IdentityService struct {
	Store     repo.Store
	Directory Directory
	Remote    UserSource

	passwordHash string
	mu           sync.Mutex
}

func NewIdentityService(store repo.Store, dir Directory, remote UserSource) (*IdentityService, error) {
	h, err := hash.HashPassword(SharedPassword)
	if err != nil {
		return nil, fmt.Errorf("hash shared password: %w", err)
	}
	if dir == nil {
		dir = SeedDirectory{}
	}
	return &IdentityService{Store: store, Directory: dir, Remote: remote, passwordHash: h}, nil
}

// Init overwrites the persisted roster with the directory contents.
func (s *IdentityService) Init(ctx context.Context) error {
	users, err := s.Directory.Users(ctx)
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := repo.PutJSON(ctx, s.Store, repo.KeyUsers, users); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("roster_seeded", "users", len(users))
	return nil
}

func (s *IdentityService) roster(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if _, err := repo.GetJSON(ctx, s.Store, repo.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *IdentityService) Users(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.roster(ctx)
}

// Login signs the profile in when email is on the roster and the password
// matches. On failure the session is left as it was.
func (s *IdentityService) Login(ctx context.Context, profileID, email, password string) (models.User, error) {
	if profileID == "" {
		return models.User{}, fmt.Errorf("profile id is required: %w", ErrValidation)
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.roster(ctx)
	if err != nil {
		return models.User{}, err
	}

	var found *models.User
	for i := range users {
		if users[i].Email == email {
			found = &users[i]
			break
		}
	}
	if found == nil || !hash.CheckPassword(s.passwordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}

	if err := repo.PutJSON(ctx, s.Store, repo.SessionKey(profileID), found); err != nil {
		return models.User{}, err
	}
	return *found, nil
}

func (s *IdentityService) Logout(ctx context.Context, profileID string) error {
	if profileID == "" {
		return fmt.Errorf("profile id is required: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Store.Delete(ctx, repo.SessionKey(profileID))
}

// CurrentUser returns the signed-in user of the profile, or nil and false.
func (s *IdentityService) CurrentUser(ctx context.Context, profileID string) (*models.User, bool, error) {
	if profileID == "" {
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var u models.User
	ok, err := repo.GetJSON(ctx, s.Store, repo.SessionKey(profileID), &u)
	if err != nil || !ok {
		return nil, false, err
	}
	return &u, true, nil
}

// Profile fetches the user from the remote collaborator when one is
// configured, otherwise from the roster. Remote failures are returned.
func (s *IdentityService) Profile(ctx context.Context, id int) (models.User, error) {
	if s.Remote != nil {
		u, err := s.Remote.User(ctx, id)
		if err != nil {
			return models.User{}, fmt.Errorf("fetch profile %d: %w", id, err)
		}
		return u, nil
	}

	users, err := s.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
}
