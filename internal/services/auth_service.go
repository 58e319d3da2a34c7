package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"natours_backend/internal/auth"
	"natours_backend/internal/email"
	"natours_backend/internal/logger"
	"natours_backend/internal/metrics"
	"natours_backend/internal/models"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AuthOptions - параметры жизненного цикла учетных данных
type AuthOptions struct {
	BcryptCost          int
	ResetTokenTTL       time.Duration
	PasswordChangedSkew time.Duration
	// Now подменяется в тестах; nil - time.Now
	Now func() time.Time
}

type AuthService interface {
	Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Authenticate проверяет токен сессии и возвращает его владельца
	Authenticate(db *gorm.DB, token string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, db *gorm.DB, emailAddr, resetURLBase string) error
	ResetPassword(db *gorm.DB, rawToken string, req *dto.ResetPasswordRequest) (*dto.AuthResponse, error)
	ChangePassword(db *gorm.DB, userID string, req *dto.UpdatePasswordRequest) (*dto.AuthResponse, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenService
	notifier email.Notifier
	opts     AuthOptions

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenService,
	notifier email.Notifier,
	opts AuthOptions,
) AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		opts:     opts,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Signup - регистрация нового пользователя
func (s *AuthServiceImpl) Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	resp, err := s.signup(ctx, db, req)
	metrics.RecordAuth("signup", err)
	return resp, err
}

func (s *AuthServiceImpl) signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, apperrors.ErrPasswordMismatch
	}

	role := req.Role
	if role == "" {
		role = models.UserRoleUser
	}
	if !role.IsValid() || role == models.UserRoleAdmin {
		return nil, apperrors.ValidationError(map[string]string{"role": "Must be one of: user, guide, lead-guide"})
	}

	addr := normalizeEmail(req.Email)
	taken, err := s.userRepo.EmailTaken(db, addr, "")
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        addr,
		Role:         role,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.InternalError(err)
	}

	// Приветственное письмо не влияет на результат регистрации
	if msg, err := email.WelcomeMessage(user.Email, user.Name); err == nil {
		if err := s.notifier.Notify(ctx, msg); err != nil {
			logger.CtxWarn(ctx, "Failed to send welcome email", "user_id", user.ID, "error", err)
		}
	}

	return s.issue(user)
}

// Login - единая ошибка для неизвестного email, неактивного аккаунта и неверного пароля
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	resp, err := s.login(db, req)
	metrics.RecordAuth("login", err)
	return resp, err
}

func (s *AuthServiceImpl) login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	addr := normalizeEmail(req.Email)
	if addr == "" || req.Password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	user, err := s.userRepo.FindActiveByEmail(db, addr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			// Сравнение с фиктивным хешем выравнивает время ответа
			auth.CheckPasswordHash(req.Password, s.dummyPasswordHash())
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthServiceImpl) Authenticate(db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if apperrors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, claims.Subject)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrAccountInvalidated
		}
		return nil, apperrors.InternalError(err)
	}

	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, apperrors.ErrStalePassword
	}
	if !user.Active {
		return nil, apperrors.ErrAccountInvalidated
	}
	return user, nil
}

// RequestPasswordReset выпускает токен сброса и отправляет ссылку.
// При ошибке отправки токен стирается.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, db *gorm.DB, emailAddr, resetURLBase string) error {
	err := s.requestPasswordReset(ctx, db, emailAddr, resetURLBase)
	metrics.RecordAuth("password_reset_request", err)
	return err
}

func (s *AuthServiceImpl) requestPasswordReset(ctx context.Context, db *gorm.DB, emailAddr, resetURLBase string) error {
	user, err := s.userRepo.FindActiveByEmail(db, normalizeEmail(emailAddr))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNoUserWithEmail
		}
		return apperrors.InternalError(err)
	}

	raw, hash, err := auth.NewResetToken()
	if err != nil {
		return apperrors.InternalError(err)
	}
	expires := s.opts.Now().Add(s.opts.ResetTokenTTL)
	if err := s.userRepo.SetResetToken(db, user.ID, &hash, &expires); err != nil {
		return apperrors.InternalError(err)
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/" + raw
	msg, err := email.PasswordResetMessage(user.Email, user.Name, resetURL, humanDuration(s.opts.ResetTokenTTL))
	if err == nil {
		err = s.notifier.Notify(ctx, msg)
	}
	if err != nil {
		logger.CtxWithError(ctx, "Failed to deliver password reset email", err, "user_id", user.ID)
		if clearErr := s.userRepo.SetResetToken(db, user.ID, nil, nil); clearErr != nil {
			logger.CtxWithError(ctx, "Failed to clear password reset token", clearErr, "user_id", user.ID)
		}
		return apperrors.ErrNotifierFailure.WithError(err)
	}

	logger.CtxInfo(ctx, "Password reset token issued", "user_id", user.ID)
	return nil
}

func (s *AuthServiceImpl) ResetPassword(db *gorm.DB, rawToken string, req *dto.ResetPasswordRequest) (*dto.AuthResponse, error) {
	resp, err := s.resetPassword(db, rawToken, req)
	metrics.RecordAuth("password_reset", err)
	return resp, err
}

func (s *AuthServiceImpl) resetPassword(db *gorm.DB, rawToken string, req *dto.ResetPasswordRequest) (*dto.AuthResponse, error) {
	if rawToken == "" {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	user, err := s.userRepo.FindByResetTokenHash(db, auth.HashResetToken(rawToken))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		return nil, apperrors.InternalError(err)
	}
	if user.PasswordResetExpires == nil || !user.PasswordResetExpires.After(s.opts.Now()) {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	if req.Password != req.PasswordConfirm {
		return nil, apperrors.ErrPasswordMismatch
	}

	if err := s.writePassword(db, user, req.Password); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthServiceImpl) ChangePassword(db *gorm.DB, userID string, req *dto.UpdatePasswordRequest) (*dto.AuthResponse, error) {
	resp, err := s.changePassword(db, userID, req)
	metrics.RecordAuth("password_change", err)
	return resp, err
}

func (s *AuthServiceImpl) changePassword(db *gorm.DB, userID string, req *dto.UpdatePasswordRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrAccountInvalidated
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.PasswordCurrent, user.PasswordHash) {
		return nil, apperrors.ErrWrongPassword
	}
	if req.Password != req.PasswordConfirm {
		return nil, apperrors.ErrPasswordMismatch
	}

	if err := s.writePassword(db, user, req.Password); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// writePassword - единственный путь записи пароля: хеш, время смены
// (со сдвигом назад, чтобы новый токен не считался устаревшим) и сброс токена
func (s *AuthServiceImpl) writePassword(db *gorm.DB, user *models.User, password string) error {
	hash, err := auth.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return apperrors.InternalError(err)
	}
	changedAt := s.opts.Now().Add(-s.opts.PasswordChangedSkew)
	if err := s.userRepo.SetPassword(db, user.ID, hash, changedAt); err != nil {
		return apperrors.InternalError(err)
	}

	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	return nil
}

func (s *AuthServiceImpl) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("not-a-real-password", s.opts.BcryptCost)
	})
	return s.dummyHash
}

// humanDuration: 10m -> "10 minutes"
func humanDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
