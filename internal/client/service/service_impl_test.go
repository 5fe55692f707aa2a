package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/plantpulse/plantpulse/internal/auth/token"
	"github.com/plantpulse/plantpulse/internal/client/domain"
	"github.com/plantpulse/plantpulse/internal/client/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)
	require.NoError(t, db.AutoMigrate(&domain.Client{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateSlugifiesCode(t *testing.T) {
	svc := setupService(t)

	created, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "Main Plant"})
	require.NoError(t, err)

	assert.Equal(t, "main-plant", created.Client.Code)
	assert.True(t, created.Client.Active)
}

func TestCreateIssuesVerifiableToken(t *testing.T) {
	svc := setupService(t)

	created, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "Main Plant"})
	require.NoError(t, err)

	// The plaintext token is returned exactly once and never stored.
	require.True(t, strings.HasPrefix(created.APIToken, "pp_"))
	assert.NotEqual(t, created.APIToken, created.Client.APITokenHash)
	assert.True(t, token.Verify(created.APIToken, created.Client.APITokenHash))
	assert.False(t, token.Verify("pp_wrong", created.Client.APITokenHash))
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Main Plant"})
	require.NoError(t, err)

	// A different name collapsing to the same slug still collides.
	_, err = svc.Create(ctx, domain.CreateClientRequest{Name: "Other", Code: "Main Plant"})
	assert.ErrorIs(t, err, domain.ErrCodeTaken)
}

func TestCreateRequiresName(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestRotateTokenInvalidatesOldToken(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Main Plant"})
	require.NoError(t, err)

	rotated, err := svc.RotateToken(ctx, created.Client.ID.String())
	require.NoError(t, err)

	assert.NotEqual(t, created.APIToken, rotated.APIToken)
	assert.True(t, token.Verify(rotated.APIToken, rotated.Client.APITokenHash))
	assert.False(t, token.Verify(created.APIToken, rotated.Client.APITokenHash))
}

func TestRotateTokenUnknownClient(t *testing.T) {
	svc := setupService(t)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	_, err = svc.RotateToken(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAndDeactivate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateClientRequest{Name: "Main Plant"})
	require.NoError(t, err)

	inactive := false
	name := "Renamed Plant"
	updated, err := svc.Update(ctx, domain.UpdateClientRequest{
		ID:     created.Client.ID.String(),
		Name:   &name,
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Plant", updated.Name)
	assert.False(t, updated.Active)
	// The code is permanent once assigned.
	assert.Equal(t, created.Client.Code, updated.Code)
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetByID(context.Background(), domain.GetClientRequest{ID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestList(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"Plant A", "Plant B"} {
		_, err := svc.Create(ctx, domain.CreateClientRequest{Name: name})
		require.NoError(t, err)
	}

	clients, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}
