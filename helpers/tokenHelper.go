package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type SignedDetails struct {
	Email string
	Name  string
	Uid   string
	jwt.StandardClaims
}

var ErrInvalidToken = errors.New("the token is invalid")

// TokenMaker issues and validates operator tokens signed with one secret.
type TokenMaker struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenMaker(secret string, ttl time.Duration) *TokenMaker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenMaker{secret: []byte(secret), ttl: ttl}
}

func (m *TokenMaker) GenerateAllTokens(email string, name string, uid string) (signedToken string, refreshSignedToken string, err error) {
	claim := SignedDetails{
		Email: email,
		Name:  name,
		Uid:   uid,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Local().Add(m.ttl).Unix(),
		},
	}
	refreshClaim := SignedDetails{
		Uid: uid,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Local().Add(7 * m.ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaim).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, refreshToken, nil
}

func (m *TokenMaker) ValidateToken(signedToken string) (*SignedDetails, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid || claims.Uid == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UpdateAllTokens stores the latest tokens on the admin document.
func UpdateAllTokens(ctx context.Context, admins *mongo.Collection, token string, refreshToken string, adminId string) error {
	updateObj := bson.D{
		{Key: "token", Value: token},
		{Key: "refreshToken", Value: refreshToken},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}
	_, err := admins.UpdateOne(ctx, bson.M{"adminId": adminId}, bson.D{{Key: "$set", Value: updateObj}})
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	return nil
}
