package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hanpage/bookreview_go_server/config"
	"github.com/hanpage/bookreview_go_server/internal/model"
	"github.com/hanpage/bookreview_go_server/internal/model/dto"
	"github.com/hanpage/bookreview_go_server/internal/pkg/email"
	"github.com/hanpage/bookreview_go_server/internal/pkg/jwt"
	"github.com/hanpage/bookreview_go_server/internal/pkg/oauth"
	"github.com/hanpage/bookreview_go_server/internal/pkg/verification"
	"github.com/hanpage/bookreview_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUsernameLength     = errors.New("username must be 2 to 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified yet")
	ErrInvalidVerifyCode  = errors.New("verification code invalid or expired")
	ErrInvalidOAuthState  = errors.New("invalid or expired oauth state")
	ErrUserNotFound       = errors.New("user not found")
)

// Username length bounds, counted in runes so multibyte names work.
const (
	usernameMinLen = 2
	usernameMaxLen = 8
)

type AuthService struct {
	userRepo    *repository.UserRepository
	cfg         *config.Config
	stateStore  *oauth.StateStore
	verifyStore *verification.Store
	emailSvc    *email.Service
	githubOAuth *oauth.GithubOAuth
	kakaoOAuth  *oauth.KakaoOAuth
}

func NewAuthService(
	userRepo *repository.UserRepository,
	stateStore *oauth.StateStore,
	verifyStore *verification.Store,
	emailSvc *email.Service,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		cfg:         cfg,
		stateStore:  stateStore,
		verifyStore: verifyStore,
		emailSvc:    emailSvc,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
		kakaoOAuth: oauth.NewKakaoOAuth(
			cfg.OAuth.Kakao.ClientID,
			cfg.OAuth.Kakao.ClientSecret,
			cfg.OAuth.Kakao.RedirectURI,
		),
	}
}

// CheckUsername reports whether the name is valid and still free. This
// is advisory only; the unique index is the authoritative guard at
// creation time.
func (s *AuthService) CheckUsername(username string) (bool, error) {
	if !validUsername(username) {
		return false, ErrUsernameLength
	}

	exists, err := s.userRepo.ExistsByUsername(username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Register creates a credentials account and mails a verification code.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if !validUsername(req.Username) {
		return nil, ErrUsernameLength
	}

	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	user := &model.User{
		Username:     req.Username,
		Email:        &req.Email,
		PasswordHash: &passwordStr,
	}

	if err := s.userRepo.Create(user); err != nil {
		// The availability check above is only advisory; the unique
		// index decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	code, err := verification.GenerateCode()
	if err != nil {
		return nil, err
	}
	if err := s.verifyStore.Save(ctx, req.Email, code); err != nil {
		return nil, err
	}

	s.sendMail(func() error {
		return s.emailSvc.SendVerificationCode(req.Email, code)
	})

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// VerifyEmail consumes the emailed code and logs the user in.
func (s *AuthService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) (*dto.LoginResponse, error) {
	ok, err := s.verifyStore.Consume(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidVerifyCode
	}

	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.EmailVerified = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return s.loginResponse(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.EmailVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.loginResponse(user)
}

// IssueTempPassword stores a fresh temporary password and mails it.
func (s *AuthService) IssueTempPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	tempPassword, err := generateRandomCode(12)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	hashedStr := string(hashed)
	user.PasswordHash = &hashedStr
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.sendMail(func() error {
		return s.emailSvc.SendTempPassword(emailAddr, tempPassword)
	})

	return nil
}

// GetUserByID resolves an actor from the ID carried in a token.
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

// BeginGithub reserves the chosen username for the OAuth round trip and
// returns the provider URL to redirect to.
func (s *AuthService) BeginGithub(ctx context.Context, username, redirectURI string) (string, error) {
	state, err := s.reserveState(ctx, username, redirectURI)
	if err != nil {
		return "", err
	}
	return s.githubOAuth.GetAuthURL(state), nil
}

// GithubCallback finishes the GitHub flow: it consumes the state,
// resolves or creates the account and logs the user in.
func (s *AuthService) GithubCallback(ctx context.Context, state, code string) (*dto.LoginResponse, error) {
	data, err := s.stateStore.ValidateState(ctx, state)
	if err != nil {
		return nil, ErrInvalidOAuthState
	}

	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	githubIDStr := fmt.Sprintf("%d", githubUser.ID)

	user, err := s.userRepo.GetByGithubID(githubIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		user = &model.User{
			GithubID:      &githubIDStr,
			AvatarURL:     githubUser.AvatarURL,
			EmailVerified: true,
		}
		if githubUser.Email != "" {
			user.Email = &githubUser.Email
		}

		username, err := s.pickUsername(data.Username, githubUser.Login)
		if err != nil {
			return nil, err
		}
		user.Username = username

		if err := s.userRepo.Create(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	return s.loginResponse(user)
}

// BeginKakao mirrors BeginGithub for the Kakao provider.
func (s *AuthService) BeginKakao(ctx context.Context, username, redirectURI string) (string, error) {
	state, err := s.reserveState(ctx, username, redirectURI)
	if err != nil {
		return "", err
	}
	return s.kakaoOAuth.GetAuthURL(state), nil
}

// KakaoCallback finishes the Kakao flow.
func (s *AuthService) KakaoCallback(ctx context.Context, state, code string) (*dto.LoginResponse, error) {
	data, err := s.stateStore.ValidateState(ctx, state)
	if err != nil {
		return nil, ErrInvalidOAuthState
	}

	token, err := s.kakaoOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	kakaoUser, err := s.kakaoOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get kakao user: %w", err)
	}

	kakaoIDStr := fmt.Sprintf("%d", kakaoUser.ID)

	user, err := s.userRepo.GetByKakaoID(kakaoIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		user = &model.User{
			KakaoID:       &kakaoIDStr,
			AvatarURL:     kakaoUser.Properties.ProfileImage,
			EmailVerified: true,
		}
		if kakaoUser.KakaoAccount.Email != "" {
			user.Email = &kakaoUser.KakaoAccount.Email
		}

		username, err := s.pickUsername(data.Username, kakaoUser.Properties.Nickname)
		if err != nil {
			return nil, err
		}
		user.Username = username

		if err := s.userRepo.Create(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	return s.loginResponse(user)
}

// reserveState validates a pre-chosen username (if any) and parks it in
// the state store for the duration of the provider round trip.
func (s *AuthService) reserveState(ctx context.Context, username, redirectURI string) (string, error) {
	if username != "" {
		if !validUsername(username) {
			return "", ErrUsernameLength
		}
		exists, err := s.userRepo.ExistsByUsername(username)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrUsernameTaken
		}
	}

	return s.stateStore.GenerateState(ctx, oauth.StateData{
		RedirectURI: redirectURI,
		Username:    username,
	})
}

// pickUsername prefers the reserved name, then the provider nickname
// trimmed to the length limit, then a generated fallback.
func (s *AuthService) pickUsername(reserved, nickname string) (string, error) {
	candidates := []string{reserved, trimRunes(nickname, usernameMaxLen)}
	for _, candidate := range candidates {
		if !validUsername(candidate) {
			continue
		}
		exists, err := s.userRepo.ExistsByUsername(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	suffix, err := generateRandomCode(4)
	if err != nil {
		return "", err
	}
	return "user" + suffix, nil
}

func (s *AuthService) loginResponse(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

// sendMail fires the notification without tying the caller's success to
// the mail server's mood.
func (s *AuthService) sendMail(send func() error) {
	if s.emailSvc == nil {
		return
	}
	go func() {
		if err := send(); err != nil {
			log.Printf("email send failed: %v", err)
		}
	}()
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		AvatarURL:     user.AvatarURL,
		Bio:           user.Bio,
		IsAdmin:       user.IsAdmin,
		EmailVerified: user.EmailVerified,
	}

	if user.Email != nil {
		info.Email = *user.Email
	}

	return info
}

func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= usernameMinLen && n <= usernameMaxLen
}

func trimRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}
