package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var testJWT = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "storefront",
	Algorithm:         "HS256",
	ExpirationMinutes: 30,
}

type countingMetrics struct {
	registrations int
	failures      int
}

func (c *countingMetrics) IncRegistration() { c.registrations++ }
func (c *countingMetrics) IncLoginFailure() { c.failures++ }

func newTestService(t *testing.T, pw config.PasswordConfig) (Service, *db.Client, *countingMetrics) {
	t.Helper()
	client := dbtest.Open(t)
	metrics := &countingMetrics{}
	svc, err := NewService(ServiceParams{
		Tx:             client,
		JWTConfig:      testJWT,
		PasswordConfig: pw,
		Metrics:        metrics,
		Now:            func() time.Time { return time.Now() },
	})
	require.NoError(t, err)
	return svc, client, metrics
}

func bcryptConfig() config.PasswordConfig {
	return config.PasswordConfig{Algorithm: config.PasswordAlgorithmBcrypt, BcryptCost: 4}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{JWTConfig: testJWT})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Tx: dbtest.Open(t)})
	require.Error(t, err)
}

func TestRegisterCreatesBuyerWithoutPassword(t *testing.T) {
	svc, client, metrics := newTestService(t, bcryptConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: " Ann@Example.COM ", Password: "s3cret!"})
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", user.Email)
	require.Equal(t, enums.RoleBuyer, user.Role)
	require.NotZero(t, user.ID)
	require.Equal(t, 1, metrics.registrations)

	var stored models.User
	require.NoError(t, client.DB().First(&stored, user.ID).Error)
	require.NotEqual(t, "s3cret!", stored.PasswordHash)

	var logs []models.UserLog
	require.NoError(t, client.DB().Where("user_id = ?", user.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, enums.UserActionRegister, logs[0].Action)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, metrics := newTestService(t, bcryptConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Other", Email: "ANN@example.com", Password: "pw2"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	require.Equal(t, 1, metrics.registrations)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t, bcryptConfig())
	ctx := context.Background()

	cases := map[string]RegisterRequest{
		"missing name":     {Email: "a@b.com", Password: "pw"},
		"invalid email":    {Name: "A", Email: "not-an-email", Password: "pw"},
		"missing password": {Name: "A", Email: "a@b.com"},
		"unknown role":     {Name: "A", Email: "a@b.com", Password: "pw", Role: "owner"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, req)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, client, metrics := newTestService(t, bcryptConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Root", Email: "root@example.com", Password: "pw", Role: "admin"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "ROOT@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "bearer", resp.TokenType)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, enums.RoleAdmin, claims.Role)
	require.Zero(t, metrics.failures)

	var count int64
	require.NoError(t, client.DB().Model(&models.UserLog{}).
		Where("user_id = ? AND action = ?", user.ID, enums.UserActionLogin).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	svc, _, metrics := newTestService(t, bcryptConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "pw"})

	for _, err := range []error{wrongPassword, unknownEmail} {
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		require.Equal(t, "incorrect email or password", typed.Message())
	}
	require.Equal(t, 2, metrics.failures)
}

func TestLoginVerifiesArgonHashes(t *testing.T) {
	svc, _, _ := newTestService(t, config.PasswordConfig{
		Algorithm:        config.PasswordAlgorithmArgon2id,
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
}

func TestLoginUpgradesOutdatedHash(t *testing.T) {
	legacy, client, _ := newTestService(t, bcryptConfig())
	ctx := context.Background()

	user, err := legacy.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	argonCfg := config.PasswordConfig{
		Algorithm:        config.PasswordAlgorithmArgon2id,
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	current, err := NewService(ServiceParams{Tx: client, JWTConfig: testJWT, PasswordConfig: argonCfg})
	require.NoError(t, err)

	_, err = current.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, client.DB().First(&stored, "id = ?", user.ID).Error)
	require.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"), stored.PasswordHash)

	_, err = current.Login(ctx, LoginRequest{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err, "upgraded hash must keep verifying")
}
