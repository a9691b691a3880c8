// Package gateway selects the remote data gateway implementation and exposes
// its ports to the fx graph.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"harbor/config"
	"harbor/internal/domain/constants"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/infra/auth"
	"harbor/internal/infra/firebase"
	"harbor/internal/infra/notification"
	"harbor/internal/infra/persistence/memory"
)

// BlobPathPrefix is where the in-memory gateway serves uploaded blobs.
const BlobPathPrefix = "/blobs"

// Gateway bundles every port of the remote data gateway.
type Gateway struct {
	Users         repository.UserRepository
	Ports         repository.PortRepository
	Categories    repository.CategoryRepository
	Goods         repository.GoodRepository
	Orders        repository.OrderRepository
	Chats         repository.ChatRepository
	Auth          service.AuthProvider
	Blobs         service.BlobStorage
	Notifications service.NotificationService

	// Memory is set when the in-process gateway is active.
	Memory *memory.Store
}

// Params holds dependencies for Gateway, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// New builds the gateway selected by configuration
func New(params Params) (*Gateway, error) {
	provider := constants.GatewayProviderMemory
	if params.Config.Gateway != nil && params.Config.Gateway.Provider != "" {
		provider = params.Config.Gateway.Provider
	}

	switch provider {
	case constants.GatewayProviderMemory:
		params.Logger.Warn("Using in-memory gateway, data is lost on restart")

		baseURL := fmt.Sprintf("http://localhost:%d%s", params.Config.HTTP.Port, BlobPathPrefix)
		store := memory.NewStore(auth.NewBcryptHasher(bcrypt.DefaultCost))
		if err := LoadDemoData(store); err != nil {
			return nil, err
		}

		return NewMemory(store, baseURL, params.Logger), nil

	case constants.GatewayProviderFirebase:
		clients, err := firebase.NewClients(firebase.ClientsParams{
			Lc:     params.Lc,
			Ctx:    params.Ctx,
			Config: params.Config,
			Logger: params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return NewFirebase(clients, params.Config), nil

	default:
		return nil, errors.Errorf("unknown gateway provider: %s", provider)
	}
}

// NewMemory wires every port to the in-process store.
func NewMemory(store *memory.Store, blobBaseURL string, logger *slog.Logger) *Gateway {
	return &Gateway{
		Users:         memory.NewUserRepository(store),
		Ports:         memory.NewPortRepository(store),
		Categories:    memory.NewCategoryRepository(store),
		Goods:         memory.NewGoodRepository(store),
		Orders:        memory.NewOrderRepository(store),
		Chats:         memory.NewChatRepository(store),
		Auth:          memory.NewAuthProvider(store),
		Blobs:         memory.NewBlobStorage(store, blobBaseURL),
		Notifications: notification.NewLogService(logger),
		Memory:        store,
	}
}

// NewFirebase wires every port to Firebase.
func NewFirebase(clients *firebase.Clients, cfg *config.Config) *Gateway {
	return &Gateway{
		Users:         firebase.NewUserRepository(clients),
		Ports:         firebase.NewPortRepository(clients),
		Categories:    firebase.NewCategoryRepository(clients),
		Goods:         firebase.NewGoodRepository(clients),
		Orders:        firebase.NewOrderRepository(clients),
		Chats:         firebase.NewChatRepository(clients),
		Auth:          firebase.NewAuthProvider(clients, cfg),
		Blobs:         firebase.NewBlobStorage(clients),
		Notifications: notification.NewFirebaseService(clients),
	}
}

// Demo accounts of the in-memory gateway
const (
	DemoBuyerEmail  = "buyer@harbor.dev"
	DemoSellerEmail = "seller@harbor.dev"
	DemoPassword    = "harbor123"
)

// LoadDemoData seeds reference data plus a buyer, a seller, an order and a chat.
func LoadDemoData(store *memory.Store) error {
	seed := memory.DefaultSeed()
	rotterdam := seed.Ports[0]
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	seed.Users = []entity.User{
		{
			ID: "demo-buyer", Email: DemoBuyerEmail, FirstName: "Mara", LastName: "Jensen",
			VesselIMO: "9321483", VesselMMSI: "244650000", Role: entity.RoleBuyer,
			Ports: []entity.Port{rotterdam}, CreatedAt: created,
		},
		{
			ID: "demo-seller", Email: DemoSellerEmail, FirstName: "Piet", LastName: "de Vries",
			Role: entity.RoleSeller, Ports: []entity.Port{rotterdam}, CreatedAt: created,
		},
	}
	seed.Goods = []entity.Good{
		{
			ID: "demo-good", OwnerID: "demo-seller", PortID: rotterdam.ID, CategoryID: "provisions",
			Title: "Fresh water 10t", Price: 420, Currency: "EUR", Available: true,
			Images: map[string]string{}, CreateTimestampGMT: created,
		},
	}
	seed.Orders = []entity.Order{
		{
			ID: "demo-order", OrderNumber: "HB-0001", Status: entity.OrderStatusPending, Quantity: 1,
			PriceInOrder: 420, CurrencyInOrder: "EUR", BuyerID: "demo-buyer", SellerID: "demo-seller",
			GoodID: "demo-good", CreateTimestampGMT: created, UpdateTimestampGMT: created,
		},
	}
	seed.Chats = []entity.Chat{
		{
			ID:      "demo-chat",
			Members: []string{"demo-buyer", "demo-seller"},
			MembersData: map[string]entity.ChatMember{
				"demo-buyer":  {Name: "Mara Jensen"},
				"demo-seller": {Name: "Piet de Vries"},
			},
			UnreadCount:   map[string]int{"demo-buyer": 1},
			LastMessage:   "Water barge alongside at 14:00.",
			LastMessageAt: created.Add(time.Hour),
			OrderID:       "demo-order",
		},
	}
	seed.Messages = []entity.Message{
		{
			ID: "demo-message", ChatID: "demo-chat", SenderID: "demo-seller",
			Text: "Water barge alongside at 14:00.", Timestamp: created.Add(time.Hour),
		},
	}
	store.Load(seed)

	if err := store.RegisterAccount("demo-buyer", DemoBuyerEmail, DemoPassword); err != nil {
		return err
	}

	return store.RegisterAccount("demo-seller", DemoSellerEmail, DemoPassword)
}

// Module provides the gateway FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		New,
		func(g *Gateway) repository.UserRepository { return g.Users },
		func(g *Gateway) repository.PortRepository { return g.Ports },
		func(g *Gateway) repository.CategoryRepository { return g.Categories },
		func(g *Gateway) repository.GoodRepository { return g.Goods },
		func(g *Gateway) repository.OrderRepository { return g.Orders },
		func(g *Gateway) repository.ChatRepository { return g.Chats },
		func(g *Gateway) service.AuthProvider { return g.Auth },
		func(g *Gateway) service.BlobStorage { return g.Blobs },
		func(g *Gateway) service.NotificationService { return g.Notifications },
	),
)
