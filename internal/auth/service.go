// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/blog-api/internal/config"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/mail"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already in use")
	ErrAlreadyConfirmed   = errors.New("account already confirmed")
)

// UserInfo is the slice of an account the lifecycle flows work with.
type UserInfo struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Confirmed    bool
	Permissions  permission.Permission
}

type NewAccount struct {
	Email         string
	Username      string
	PasswordHash  string
	Administrator bool
}

// UserProvider is the account store behind the lifecycle flows. Lookups
// of missing accounts wrap core.ErrNotFound; UpdateEmail wraps
// core.ErrDuplicateKey when the address is taken.
type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	Create(ctx context.Context, account NewAccount) (*UserInfo, error)
	Confirm(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateEmail(ctx context.Context, userID, email string) error
	Touch(ctx context.Context, userID string) error
}

type Mailer interface {
	Enqueue(msg mail.Message) bool
}

type Config struct {
	Token      config.TokenConfig
	AdminEmail string
	PublicURL  string
}

type Service struct {
	tokens *TokenManager
	hasher *core.PasswordHasher
	users  UserProvider
	mailer Mailer
	cfg    Config
}

func NewService(
	tokens *TokenManager,
	hasher *core.PasswordHasher,
	users UserProvider,
	mailer Mailer,
	cfg Config,
) *Service {
	cfg.AdminEmail = normalizeEmail(cfg.AdminEmail)
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return &Service{
		tokens: tokens,
		hasher: hasher,
		users:  users,
		mailer: mailer,
		cfg:    cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unconfirmed account and mails its confirmation
// token. The configured admin address is registered as Administrator.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserInfo, error) {
	email := normalizeEmail(req.Email)

	if err := s.ensureFree(ctx, s.users.GetByEmail, email, ErrEmailExists); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.users.GetByUsername, req.Username, ErrUsernameExists); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewAccount{
		Email:         email,
		Username:      req.Username,
		PasswordHash:  passwordHash,
		Administrator: s.cfg.AdminEmail != "" && email == s.cfg.AdminEmail,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendConfirmation(user); err != nil {
		return nil, err
	}

	if s.cfg.AdminEmail != "" {
		s.mailer.Enqueue(mail.Message{
			To:       s.cfg.AdminEmail,
			Subject:  "New User",
			Template: mail.TemplateNewUser,
			Data: map[string]any{
				"Username": user.Username,
				"Email":    user.Email,
			},
		})
	}

	return user, nil
}

func (s *Service) ensureFree(
	ctx context.Context,
	lookup func(context.Context, string) (*UserInfo, error),
	value string,
	taken error,
) error {
	_, err := lookup(ctx, value)
	if err == nil {
		return taken
	}
	if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("check availability: %w", err)
	}
	return nil
}

func (s *Service) GenerateConfirmationToken(userID string) (string, error) {
	return s.tokens.Issue(Payload{KeyConfirm: userID}, s.cfg.Token.ConfirmExpire)
}

// Confirm marks userID confirmed when token confirms that same account.
// A bad, expired or foreign token reports false and changes nothing.
func (s *Service) Confirm(
	ctx context.Context,
	userID, token string,
) (bool, error) {
	payload, ok := s.verify(ctx, token)
	if !ok || payload[KeyConfirm] != userID {
		return false, nil
	}

	if err := s.users.Confirm(ctx, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("confirm user: %w", err)
	}

	return true, nil
}

func (s *Service) ResendConfirmation(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if user.Confirmed {
		return ErrAlreadyConfirmed
	}

	return s.sendConfirmation(user)
}

func (s *Service) sendConfirmation(user *UserInfo) error {
	token, err := s.GenerateConfirmationToken(user.ID)
	if err != nil {
		return fmt.Errorf("generate confirmation token: %w", err)
	}

	s.mailer.Enqueue(mail.Message{
		To:       user.Email,
		Subject:  "Confirm Your Account",
		Template: mail.TemplateConfirm,
		Data:     s.mailData(user, token, "/auth/confirm"),
	})

	return nil
}

func (s *Service) GenerateResetToken(userID string) (string, error) {
	return s.tokens.Issue(Payload{KeyReset: userID}, s.cfg.Token.ResetExpire)
}

// RequestPasswordReset mails a reset token when email belongs to an
// account. Unknown addresses are accepted silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	token, err := s.GenerateResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	s.mailer.Enqueue(mail.Message{
		To:       user.Email,
		Subject:  "Reset Your Password",
		Template: mail.TemplateResetPassword,
		Data:     s.mailData(user, token, "/auth/reset"),
	})

	return nil
}

// ResetPassword replaces the password of the account registered under
// email when token was issued for that account.
func (s *Service) ResetPassword(
	ctx context.Context,
	email, token, newPassword string,
) (bool, error) {
	payload, ok := s.verify(ctx, token)
	if !ok {
		return false, nil
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get user by email: %w", err)
	}

	if payload[KeyReset] != user.ID {
		return false, nil
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	return true, nil
}

func (s *Service) GenerateChangeEmailToken(userID, newEmail string) (string, error) {
	return s.tokens.Issue(
		Payload{KeyChangeEmail: userID, KeyNewEmail: normalizeEmail(newEmail)},
		s.cfg.Token.ChangeEmailExpire,
	)
}

// RequestEmailChange checks the current password and mails a change token
// to the new address.
func (s *Service) RequestEmailChange(
	ctx context.Context,
	userID, newEmail, password string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newEmail = normalizeEmail(newEmail)
	if err := s.ensureFree(ctx, s.users.GetByEmail, newEmail, ErrEmailExists); err != nil {
		return err
	}

	token, err := s.GenerateChangeEmailToken(user.ID, newEmail)
	if err != nil {
		return fmt.Errorf("generate change email token: %w", err)
	}

	s.mailer.Enqueue(mail.Message{
		To:       newEmail,
		Subject:  "Confirm your email address",
		Template: mail.TemplateChangeEmail,
		Data:     s.mailData(user, token, "/auth/change-email"),
	})

	return nil
}

// ChangeEmail applies the address carried by token to userID. It fails
// without writing when the token is for another account or the address
// is already registered, including to userID itself.
func (s *Service) ChangeEmail(
	ctx context.Context,
	userID, token string,
) (bool, error) {
	payload, ok := s.verify(ctx, token)
	if !ok || payload[KeyChangeEmail] != userID {
		return false, nil
	}

	newEmail := payload[KeyNewEmail]
	if newEmail == "" {
		return false, nil
	}

	_, err := s.users.GetByEmail(ctx, newEmail)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, fmt.Errorf("get user by email: %w", err)
	}

	if err := s.users.UpdateEmail(ctx, userID, newEmail); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) || errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("update email: %w", err)
	}

	return true, nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, oldPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (s *Service) GenerateAuthToken(userID string) (*TokenResponse, error) {
	token, err := s.tokens.Issue(Payload{KeyID: userID}, s.cfg.Token.AuthExpire)
	if err != nil {
		return nil, fmt.Errorf("generate auth token: %w", err)
	}

	return &TokenResponse{
		Token:      token,
		Expiration: int(s.cfg.Token.AuthExpire.Seconds()),
	}, nil
}

// VerifyAuthToken resolves an auth token to its live account.
func (s *Service) VerifyAuthToken(
	ctx context.Context,
	token string,
) (*UserInfo, error) {
	payload, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	userID := payload[KeyID]
	if userID == "" {
		return nil, fmt.Errorf("verify auth token: %w", core.ErrTokenInvalid)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify auth token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// Authenticate implements the API gate. An empty identifier is anonymous,
// an empty secret makes identifier an auth token, and anything else is an
// email (or username) and password pair.
func (s *Service) Authenticate(
	ctx context.Context,
	identifier, secret string,
) (*middleware.Identity, error) {
	ctx, span := core.StartSpan(ctx, "auth.authenticate")
	defer span.End()

	if identifier == "" {
		core.AddSpanEvent(ctx, "auth.anonymous")
		return middleware.Anonymous(), nil
	}

	var (
		user      *UserInfo
		err       error
		tokenUsed bool
	)

	if secret == "" {
		tokenUsed = true
		user, err = s.VerifyAuthToken(ctx, identifier)
	} else {
		user, err = s.verifyPassword(ctx, identifier, secret)
	}

	if err != nil {
		core.AddSpanEvent(ctx, "auth.rejected",
			attribute.Bool("auth.token_used", tokenUsed),
		)
		if errors.Is(err, core.ErrTokenInvalid) ||
			errors.Is(err, core.ErrTokenExpired) ||
			errors.Is(err, ErrInvalidCredentials) {
			return nil, fmt.Errorf("authenticate: %w", core.ErrUnauthorized)
		}
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	core.AddSpanEvent(ctx, "auth.accepted",
		attribute.String("user.id", user.ID),
		attribute.Bool("auth.token_used", tokenUsed),
	)

	if err := s.users.Touch(ctx, user.ID); err != nil {
		slog.WarnContext(ctx, "ping last seen failed",
			"user_id", user.ID,
			"error", err,
		)
	}

	return &middleware.Identity{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		Confirmed:   user.Confirmed,
		Permissions: user.Permissions,
		TokenUsed:   tokenUsed,
	}, nil
}

func (s *Service) verifyPassword(
	ctx context.Context,
	identifier, password string,
) (*UserInfo, error) {
	var (
		user *UserInfo
		err  error
	)

	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, normalizeEmail(identifier))
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}

	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.hasher.VerifyTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.VerifyTimingSafe(password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	return user, nil
}

// verify reports the token payload, recording the outcome on the span.
func (s *Service) verify(ctx context.Context, token string) (Payload, bool) {
	payload, err := s.tokens.Verify(token)
	if err != nil {
		core.AddSpanEvent(ctx, "token.rejected",
			attribute.Bool("token.expired", errors.Is(err, core.ErrTokenExpired)),
		)
		return nil, false
	}
	return payload, true
}

func (s *Service) mailData(user *UserInfo, token, path string) map[string]any {
	data := map[string]any{
		"Username": user.Username,
		"Email":    user.Email,
		"Token":    token,
	}
	if s.cfg.PublicURL != "" {
		data["Link"] = s.cfg.PublicURL + path + "?token=" + token
	}
	return data
}
