package data

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lk2023060901/drive-backend/internal/drive/biz"
)

// UploadsRoute 本地文件下载路由前缀
const UploadsRoute = "/uploads/"

const localTokenAudience = "local-download"

var ErrInvalidDownloadToken = errors.New("invalid or expired download token")

// LocalSigner 用 HS256 签发本地文件下载 token
type LocalSigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewLocalSigner baseURL 为对外访问地址，可为空（返回相对路径）
func NewLocalSigner(secret, baseURL string) *LocalSigner {
	return &LocalSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

var _ biz.LocalURLSigner = (*LocalSigner)(nil)

func (s *LocalSigner) SignURL(key string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   key,
		Audience:  jwt.ClaimStrings{localTokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign download token: %w", err)
	}
	return s.baseURL + UploadsRoute + url.PathEscape(key) + "?token=" + url.QueryEscape(token), nil
}

// Verify 校验 token 并返回其中的存储 key
func (s *LocalSigner) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(localTokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidDownloadToken
	}
	return claims.Subject, nil
}
