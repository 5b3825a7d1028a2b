package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// hashCost bcrypt cost，测试中调低
var hashCost = bcrypt.DefaultCost

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service 用户领域服务（凭证存储与校验）
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, username, email, password, imageURL string) (*User, error)

	// Authenticate 校验用户名和密码
	// 用户不存在与密码错误都返回ErrInvalidCredentials
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// GetByID 不存在时返回ErrUserNotFound
	GetByID(ctx context.Context, id uint) (*User, error)

	// UpdateProfile 修改资料，需要当前密码
	UpdateProfile(ctx context.Context, userID uint, currentPassword string, p ProfileUpdate) (*User, error)
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 用户注册
// 1. 用户名、邮箱、密码校验
// 2. 密码bcrypt加密
// 3. 用户名、邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, username, email, password, imageURL string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	user := NewUser(username, email, string(hashed), strings.TrimSpace(imageURL))
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := checkPassword(user.Password, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, currentPassword string, p ProfileUpdate) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := checkPassword(user.Password, currentPassword); err != nil {
		return nil, err
	}

	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if p.Username != "" {
		if err := validateUsername(p.Username); err != nil {
			return nil, err
		}
	}
	if p.Email != "" && !emailPattern.MatchString(p.Email) {
		return nil, ErrInvalidEmail
	}

	user.ApplyProfile(p)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func checkPassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return apperrors.Wrap(err, "密码验证失败")
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n == 0 || n > 64 {
		return ErrInvalidUsername
	}
	return nil
}
