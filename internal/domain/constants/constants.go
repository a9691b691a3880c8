// Package constants holds provider names and other fixed values shared across layers.
package constants

// Environments
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub providers
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Gateway providers
const (
	GatewayProviderFirebase = "firebase"
	GatewayProviderMemory   = "memory"
)

// Local cache providers
const (
	CacheProviderMemory = "memory"
	CacheProviderRedis  = "redis"
	CacheProviderPebble = "pebble"
)

// Session
const (
	SessionHeader     = "Authorization"
	SessionCookieName = "harbor_session"
	SessionQueryParam = "token"
)

// Firestore collections
const (
	CollectionUsers      = "users"
	CollectionPorts      = "ports"
	CollectionCategories = "categories"
	CollectionGoods      = "goods"
	CollectionOrders     = "orders"
	CollectionChats      = "chats"
	CollectionMessages   = "messages"
)
