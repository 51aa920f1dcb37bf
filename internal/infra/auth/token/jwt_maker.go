package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretKeySize = 32

// JWTMaker HS256簽章的token maker
// access/refresh使用不同secret, 避免token種類互換
type JWTMaker struct {
	accessKey  []byte
	refreshKey []byte
	issuer     string
	audience   string
}

func NewJWTMaker(accessKey, refreshKey, issuer, audience string) (Maker, error) {
	if len(accessKey) < minSecretKeySize || len(refreshKey) < minSecretKeySize {
		return nil, errors.New("invalid key size: must be at least 32 characters")
	}
	if accessKey == refreshKey {
		return nil, errors.New("access and refresh keys must differ")
	}

	return &JWTMaker{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
		issuer:     issuer,
		audience:   audience,
	}, nil
}

func (maker *JWTMaker) CreateAccessToken(arg CreateAccessTokenParams, duration time.Duration) (string, *AccessPayload, error) {
	now := time.Now().UTC()
	payload := &AccessPayload{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   arg.UserID.String(),
			Issuer:    maker.issuer,
			Audience:  jwt.ClaimStrings{maker.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
		Email:        arg.Email,
		Role:         arg.Role,
		TenantID:     arg.TenantID,
		SessionID:    arg.SessionID,
		Permissions:  arg.Permissions,
		TokenVersion: arg.TokenVersion,
		TokenType:    TokenTypeAccess,
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(maker.accessKey)
	if err != nil {
		return "", nil, err
	}
	return tokenStr, payload, nil
}

func (maker *JWTMaker) CreateRefreshToken(userID, sessionID, familyID uuid.UUID, duration time.Duration) (string, *RefreshPayload, error) {
	now := time.Now().UTC()
	payload := &RefreshPayload{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			Issuer:    maker.issuer,
			Audience:  jwt.ClaimStrings{maker.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
		SessionID: sessionID,
		FamilyID:  familyID,
		TokenType: TokenTypeRefresh,
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(maker.refreshKey)
	if err != nil {
		return "", nil, err
	}
	return tokenStr, payload, nil
}

func (maker *JWTMaker) VerifyAccessToken(tokenStr string) (*AccessPayload, error) {
	payload := &AccessPayload{}
	if err := maker.parse(tokenStr, payload, maker.accessKey); err != nil {
		return nil, err
	}
	if payload.TokenType != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return payload, nil
}

func (maker *JWTMaker) VerifyRefreshToken(tokenStr string) (*RefreshPayload, error) {
	payload := &RefreshPayload{}
	if err := maker.parse(tokenStr, payload, maker.refreshKey); err != nil {
		return nil, err
	}
	if payload.TokenType != TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return payload, nil
}

func (maker *JWTMaker) parse(tokenStr string, claims jwt.Claims, key []byte) error {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	}

	_, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc,
		jwt.WithIssuer(maker.issuer),
		jwt.WithAudience(maker.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	return nil
}
