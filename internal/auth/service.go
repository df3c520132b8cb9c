package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jidware/jidcore/internal/audit"
	"github.com/jidware/jidcore/internal/infrastructure/logging"
)

// Service is the authentication facade the API layer talks to.
//
// It resolves identities through the credential repositories, issues
// tokens on successful password verification, and verifies presented
// tokens. Unknown identity and wrong password both surface as
// ErrIncorrectCredentials.
type Service struct {
	admins   AdminRepository
	users    UserRepository
	issuer   *Issuer
	verifier *Verifier
	audit    audit.Repository
	logger   *logging.Logger
}

// ServiceDeps holds the dependencies required by the auth service.
type ServiceDeps struct {
	Admins   AdminRepository
	Users    UserRepository
	Issuer   *Issuer
	Verifier *Verifier
	Audit    audit.Repository // optional; nil disables the audit trail
	Logger   *logging.Logger
}

// NewService creates the auth service.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Admins == nil || deps.Users == nil {
		return nil, errors.New("credential repositories are required")
	}
	if deps.Issuer == nil || deps.Verifier == nil {
		return nil, errors.New("issuer and verifier are required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}

	return &Service{
		admins:   deps.Admins,
		users:    deps.Users,
		issuer:   deps.Issuer,
		verifier: deps.Verifier,
		audit:    deps.Audit,
		logger:   deps.Logger.With("component", "auth"),
	}, nil
}

// LoginAdmin authenticates an admin by email and returns a signed token.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (string, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			s.recordLogin(ctx, RoleAdmin, "", audit.OutcomeDenied)
			return "", ErrIncorrectCredentials
		}
		return "", fmt.Errorf("looking up admin: %w", err)
	}

	token, err := s.issuer.Issue(ctx, admin, password)
	if err != nil {
		if errors.Is(err, ErrIncorrectCredentials) {
			s.recordLogin(ctx, RoleAdmin, admin.ID, audit.OutcomeDenied)
			return "", ErrIncorrectCredentials
		}
		return "", err
	}

	s.recordLogin(ctx, RoleAdmin, admin.ID, audit.OutcomeSuccess)
	s.logger.Info("admin login", "admin_id", admin.ID)
	return token, nil
}

// LoginUser authenticates a user within its location and returns a
// signed token.
func (s *Service) LoginUser(ctx context.Context, location, name, password string) (string, error) {
	user, err := s.users.GetByLocationAndName(ctx, location, name)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.recordLogin(ctx, RoleUser, "", audit.OutcomeDenied)
			return "", ErrIncorrectCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	token, err := s.issuer.Issue(ctx, user, password)
	if err != nil {
		if errors.Is(err, ErrIncorrectCredentials) {
			s.recordLogin(ctx, RoleUser, user.ID, audit.OutcomeDenied)
			return "", ErrIncorrectCredentials
		}
		return "", err
	}

	s.recordLogin(ctx, RoleUser, user.ID, audit.OutcomeSuccess)
	s.logger.Info("user login", "user_id", user.ID, "location", location)
	return token, nil
}

// VerifyHeader verifies an Authorization header value, optionally
// restricted to a role. Token-level rejection comes back in the Result;
// the error is reserved for key material failures.
func (s *Service) VerifyHeader(ctx context.Context, authorization string, expectedRole Role) (Result, error) {
	result, err := s.verifier.Verify(ctx, authorization, expectedRole)
	if err != nil {
		s.logger.Error("token verification unavailable", "error", err)
		return Result{}, err
	}

	if !result.Valid {
		s.logger.Debug("token rejected", "kind", string(result.ErrorKind), "detail", result.Detail)
	}
	return result, nil
}

// recordLogin writes a login audit entry. Best effort: a failed write
// is logged and swallowed so auditing can never block authentication.
func (s *Service) recordLogin(ctx context.Context, role Role, actorID, outcome string) {
	if s.audit == nil {
		return
	}

	entry := &audit.Entry{
		Action:    audit.ActionLogin,
		ActorRole: string(role),
		ActorID:   actorID,
		Outcome:   outcome,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Error("writing audit entry", "error", err)
	}
}
