package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/repository"
)

// IdentityResolver 把连接携带的 bearer token 解析为用户。
// 令牌的签发属于平台的其他部分，这里只负责校验。
type IdentityResolver struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	jwtExpiry time.Duration
}

// NewIdentityResolver 创建 IdentityResolver 实例。
// jwtExpiryHours 只影响 IssueToken 签发的令牌。
func NewIdentityResolver(userRepo repository.UserRepository, jwtSecretKey string, jwtExpiryHours int) (*IdentityResolver, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for IdentityResolver")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24
	}
	return &IdentityResolver{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecretKey),
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}, nil
}

// Resolve 返回令牌对应的用户，任何失败 (空令牌、格式错误、过期、用户不存在) 都返回 nil，即匿名。
func (r *IdentityResolver) Resolve(ctx context.Context, token string) *domain.User {
	if token == "" {
		return nil
	}
	userID, err := r.parseToken(token)
	if err != nil {
		logrus.WithError(err).Debug("Token rejected, treating caller as anonymous")
		return nil
	}
	user, err := r.userRepo.FindByID(ctx, userID)
	if err != nil {
		logCtx := logrus.WithField("user_id", userID).WithError(err)
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Debug("Token subject does not exist, treating caller as anonymous")
		} else {
			logCtx.Warn("Failed to load token subject, treating caller as anonymous")
		}
		return nil
	}
	return user
}

// IssueToken 为用户签发一个 HS256 令牌，供命令行工具和测试使用。
func (r *IdentityResolver) IssueToken(userID uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(r.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})
	tokenString, err := token.SignedString(r.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// parseToken 校验签名和有效期，返回 user_id 声明
func (r *IdentityResolver) parseToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.jwtSecret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: user_id claim missing or not a string", ErrInvalidToken)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: user_id claim is not a uuid", ErrInvalidToken)
	}
	return userID, nil
}
