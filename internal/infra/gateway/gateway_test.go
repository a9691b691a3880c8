package gateway

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"harbor/internal/domain/repository"
	"harbor/internal/infra/auth"
	"harbor/internal/infra/persistence/memory"
)

func TestNewMemory_DemoData(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(auth.NewBcryptHasher(bcrypt.MinCost))
	require.NoError(t, LoadDemoData(store))

	g := NewMemory(store, "http://localhost/blobs", slog.New(slog.NewTextHandler(io.Discard, nil)))

	identity, err := g.Auth.SignInWithPassword(ctx, DemoSellerEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "demo-seller", identity.UID)

	orders, err := g.Orders.FindBySeller(ctx, identity.UID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	goods, err := g.Goods.Find(ctx, repository.GoodsFilter{PortID: "NLRTM"})
	require.NoError(t, err)
	assert.Len(t, goods, 1)

	chat, err := g.Chats.FindBetween(ctx, "demo-seller", "demo-buyer")
	require.NoError(t, err)
	assert.Equal(t, 1, chat.Unread("demo-buyer"))
}
