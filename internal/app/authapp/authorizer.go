package authapp

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"time"
)

var (
	ErrAccessTokenInvalid = errors.New("invalid access token")
	ErrAccessTokenExpired = fmt.Errorf("%w: token expired", ErrAccessTokenInvalid)
)

// Authorizer issues and checks HS256 bearer tokens. Users are managed
// elsewhere; a token only carries the user id in "sub".
type Authorizer struct {
	Secret         string
	AccessTokenTTL time.Duration
	Now            func() time.Time
}

func NewAuthorizer(secret string, ttl time.Duration) *Authorizer {
	return &Authorizer{
		Secret:         secret,
		AccessTokenTTL: ttl,
		Now:            time.Now,
	}
}

func (a *Authorizer) GenerateAccessToken(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty subject", ErrAccessTokenInvalid)
	}
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": uuid.New().String(),
		"sub": userID,
		"exp": now.Add(a.AccessTokenTTL).Unix(),
		"iat": now.Unix(),
	})
	return token.SignedString([]byte(a.Secret))
}

type AccessTokenData struct {
	TokenID string
	UserID  string
}

func (a *Authorizer) ValidateAccessToken(accessToken string) (*AccessTokenData, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrAccessTokenExpired
		}
		return nil, ErrAccessTokenInvalid
	}

	if !claims.VerifyExpiresAt(a.now().Unix(), true) {
		return nil, ErrAccessTokenExpired
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrAccessTokenInvalid
	}
	jti, _ := claims["jti"].(string)

	return &AccessTokenData{
		TokenID: jti,
		UserID:  sub,
	}, nil
}

func (a *Authorizer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
