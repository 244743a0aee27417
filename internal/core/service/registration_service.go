package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

const registeredMessage = "User created successfully and registration link sent to email"

// defaultImageFile is the shared placeholder served for both the profile
// image and the cover photo of a fresh account.
const defaultImageFile = "blank-profile-picture-gab6c06e5a_1920.png"

const nonceBytes = 32

const defaultCallTimeout = 5 * time.Second

// RoleResolver resolves requested role names against the store and provides
// the lazily created default role.
type RoleResolver interface {
	Resolve(ctx context.Context, names []string) ([]domain.Role, error)
	EnsureDefault(ctx context.Context) (domain.Role, error)
}

// RegistrationRecorder receives the audit event of a committed registration.
// Implementations must not block.
type RegistrationRecorder interface {
	Record(event domain.RegistrationEvent)
}

// RegistrationConfig carries the tunables injected at construction time.
type RegistrationConfig struct {
	// BaseURL is the public asset host used to derive default image URLs.
	BaseURL string
	// BcryptCost is the bcrypt work factor. Defaults to bcrypt.DefaultCost (10).
	BcryptCost int
	// CallTimeout bounds every call across the store/issuer boundary.
	CallTimeout time.Duration
}

// RegistrationService implements the registration workflow.
type RegistrationService struct {
	users    ports.UserRepository
	roles    RoleResolver
	issuer   ports.TokenIssuer
	recorder RegistrationRecorder
	cfg      RegistrationConfig
	logger   zerolog.Logger
}

// NewRegistrationService wires the registration workflow. recorder may be nil
// when no audit pipeline is attached (tests).
func NewRegistrationService(
	users ports.UserRepository,
	roles RoleResolver,
	issuer ports.TokenIssuer,
	recorder RegistrationRecorder,
	cfg RegistrationConfig,
	logger zerolog.Logger,
) *RegistrationService {
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	return &RegistrationService{
		users:    users,
		roles:    roles,
		issuer:   issuer,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register admits a new account. Duplicate checks run before any mutation;
// once the user row exists, any later failure rolls the partial record back
// so a half-registered user never survives.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	// 1. Fast-path duplicate checks, email first. The store's unique indexes
	// remain the source of truth — Create re-raises duplicates authoritatively.
	if err := s.checkAvailability(ctx, email, username); err != nil {
		return nil, err
	}

	// 2. Registration nonce and timestamp.
	nonce, err := newRegistrationNonce()
	if err != nil {
		return nil, fmt.Errorf("registration nonce: %w", err)
	}
	registeredAt := time.Now().UTC()

	// 3. Resolve requested roles, falling back to the default "user" role.
	roles, err := s.resolveRoles(ctx, in.RequestedRoles)
	if err != nil {
		return nil, err
	}

	// 4. Hash the password.
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 5. Create the user row.
	assetURL := s.defaultAssetURL()
	createCtx, cancel := s.boundary(ctx)
	created, err := s.users.Create(createCtx, &domain.User{
		Email:                 email,
		Username:              username,
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		PasswordHash:          string(hash),
		RegistrationToken:     nonce,
		RegistrationTimestamp: registeredAt,
		ImageURL:              assetURL,
		CoverPhotoURL:         assetURL,
		CreatedAt:             registeredAt,
		UpdatedAt:             registeredAt,
	})
	cancel()
	if err != nil {
		return nil, classify(err)
	}

	// 6. Associate roles.
	assignCtx, cancel := s.boundary(ctx)
	err = s.users.AssignRoles(assignCtx, created.ID, roles)
	cancel()
	if err != nil {
		s.rollback(created.ID)
		return nil, classify(fmt.Errorf("assign roles: %w", err))
	}

	// 7. Re-read role names from the store; token claims must reflect what
	// was actually persisted, not what was requested.
	namesCtx, cancel := s.boundary(ctx)
	roleNames, err := s.users.RoleNames(namesCtx, created.ID)
	cancel()
	if err != nil {
		s.rollback(created.ID)
		return nil, classify(fmt.Errorf("read role names: %w", err))
	}

	// 8. Issue the token pair and persist the refresh token.
	issueCtx, cancel := s.boundary(ctx)
	pair, err := s.issuer.Issue(issueCtx, ports.IssueInput{
		UserID:    created.ID,
		Email:     created.Email,
		Nonce:     nonce,
		RoleNames: roleNames,
	})
	cancel()
	if err != nil {
		s.rollback(created.ID)
		return nil, classify(fmt.Errorf("issue tokens: %w", err))
	}

	saveCtx, cancel := s.boundary(ctx)
	err = s.users.SetRefreshToken(saveCtx, created.ID, pair.RefreshToken)
	cancel()
	if err != nil {
		s.rollback(created.ID)
		return nil, classify(fmt.Errorf("persist refresh token: %w", err))
	}

	s.logger.Info().
		Str("user_id", created.ID).
		Str("username", created.Username).
		Strs("roles", roleNames).
		Msg("user registered")

	if s.recorder != nil {
		s.recorder.Record(domain.RegistrationEvent{
			UserID:    created.ID,
			Email:     created.Email,
			Username:  created.Username,
			RoleNames: roleNames,
			Timestamp: registeredAt,
		})
	}

	return &ports.RegisterResult{Message: registeredMessage}, nil
}

// checkAvailability is the pre-mutation duplicate scan. Email takes priority
// when both collide.
func (s *RegistrationService) checkAvailability(ctx context.Context, email, username string) error {
	lookupCtx, cancel := s.boundary(ctx)
	defer cancel()

	if _, err := s.users.FindByEmail(lookupCtx, email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return classify(fmt.Errorf("email lookup: %w", err))
	}

	if _, err := s.users.FindByUsername(lookupCtx, username); err == nil {
		return domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return classify(fmt.Errorf("username lookup: %w", err))
	}

	return nil
}

func (s *RegistrationService) resolveRoles(ctx context.Context, requested []string) ([]domain.Role, error) {
	resolveCtx, cancel := s.boundary(ctx)
	defer cancel()

	// The default role must exist after every registration, whether or not it
	// ends up assigned.
	def, err := s.roles.EnsureDefault(resolveCtx)
	if err != nil {
		return nil, classify(fmt.Errorf("ensure default role: %w", err))
	}

	roles, err := s.roles.Resolve(resolveCtx, requested)
	if err != nil {
		return nil, classify(fmt.Errorf("resolve roles: %w", err))
	}
	if len(roles) > 0 {
		return roles, nil
	}
	return []domain.Role{def}, nil
}

// rollback compensates a failed registration by deleting the partial user.
// Runs on a detached context: the cleanup must proceed even when the request
// context is already cancelled.
func (s *RegistrationService) rollback(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
	defer cancel()

	if err := s.users.Delete(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to roll back partial registration")
	}
}

func (s *RegistrationService) boundary(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.CallTimeout)
}

func (s *RegistrationService) defaultAssetURL() string {
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + path.Join("Images", defaultImageFile)
}

// classify maps boundary timeouts to the dependency-unavailable error so the
// transport layer can surface them uniformly. Domain errors pass through.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	return err
}

// newRegistrationNonce returns a fresh 64-character hex nonce.
func newRegistrationNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
