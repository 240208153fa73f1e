package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/pgsafe/pkg/database"
	"github.com/ekaya-inc/pgsafe/pkg/testhelpers"
)

func TestNewConnection(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, &database.Config{
		URL:            db.ConnStr,
		MaxConnections: 5,
	}, zap.NewNop())
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping(ctx))
}

func TestNewConnectionBadURL(t *testing.T) {
	_, err := database.NewConnection(context.Background(), &database.Config{
		URL: "not a url",
	}, zap.NewNop())
	assert.Error(t, err)
}
