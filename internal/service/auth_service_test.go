package service

import (
	"context"
	"testing"
	"time"

	"sellerhub/internal/config"
	"sellerhub/internal/model"
	"sellerhub/pkg/errcode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testJWT = &config.JWTConfig{Secret: "test-secret", TTLHours: 1, Issuer: "sellerhub"}

func TestSigninErrors(t *testing.T) {
	db := setupTestDB(t)
	seedSeller(t, db, "pending01", model.SellerStatusPending)
	seedSeller(t, db, "active01", model.SellerStatusActive)
	svc := NewAuthService(db, zap.NewNop(), testJWT)
	ctx := context.Background()

	_, err := svc.Signin(ctx, &SigninRequest{Identification: "nobody", Password: "x"})
	assert.ErrorIs(t, err, errcode.ErrInvalidUser)

	// 입점대기 优先于密码校验
	_, err = svc.Signin(ctx, &SigninRequest{Identification: "pending01", Password: "wrong"})
	assert.ErrorIs(t, err, errcode.ErrNotValidatedYet)

	_, err = svc.Signin(ctx, &SigninRequest{Identification: "active01", Password: "wrong"})
	assert.ErrorIs(t, err, errcode.ErrWrongPassword)
}

func TestSigninIssuesToken(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "active01", model.SellerStatusActive)
	masterID := seedMaster(t, db, "master01")
	svc := NewAuthService(db, zap.NewNop(), testJWT)
	ctx := context.Background()

	asSeller, err := svc.Signin(ctx, &SigninRequest{Identification: "active01", Password: "seller1234"})
	require.NoError(t, err)
	assert.False(t, asSeller.IsMaster)
	assert.Len(t, asSeller.FilterList, 3)

	claims, err := svc.ParseToken(asSeller.Authorization)
	require.NoError(t, err)
	assert.Equal(t, sellerID, claims.AccountID)
	assert.False(t, claims.IsMaster)

	asMaster, err := svc.Signin(ctx, &SigninRequest{Identification: "master01", Password: "master1234"})
	require.NoError(t, err)
	assert.True(t, asMaster.IsMaster)
	require.Len(t, asMaster.FilterList, 5)
	attrFilter := asMaster.FilterList[4]
	assert.Equal(t, "attribute", attrFilter.ID)
	assert.Len(t, attrFilter.Category, len(model.DefaultSellerAttributes)+1)

	caller, err := svc.ResolveCaller(ctx, &Claims{AccountID: masterID})
	require.NoError(t, err)
	assert.True(t, caller.IsMaster)
}

func TestParseTokenRejects(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, zap.NewNop(), testJWT)

	expired, err := svc.IssueToken(7, false, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = svc.ParseToken(expired)
	assert.ErrorIs(t, err, errcode.ErrInvalidToken)

	other := NewAuthService(db, zap.NewNop(), &config.JWTConfig{Secret: "another", TTLHours: 1, Issuer: "sellerhub"})
	forged, err := other.IssueToken(7, true, time.Now())
	require.NoError(t, err)
	_, err = svc.ParseToken(forged)
	assert.ErrorIs(t, err, errcode.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{AccountID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(none)
	assert.ErrorIs(t, err, errcode.ErrInvalidToken)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, errcode.ErrInvalidToken)
}
