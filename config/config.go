package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "10MB"
	defaultSessionTTL         = 24 * time.Hour
	defaultImageMaxDimension  = 1600
	defaultImageJPEGQuality   = 85
	defaultNotifierPort       = 8081
	defaultNotifierPushPath   = "/pubsub/push"
	defaultNotifierTitle      = "New message"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Gateway selects the remote data gateway implementation
	Gateway *GatewayConfig `json:"gateway" yaml:"gateway"`

	// Firebase configuration for documents, blobs, auth and push notifications
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// Cache configuration for the per-session local persistence cache
	Cache *CacheConfig `json:"cache" yaml:"cache"`

	// Session configuration for client sessions and their tokens
	Session *SessionConfig `json:"session" yaml:"session"`

	// Images configuration for uploaded image processing
	Images *ImagesConfig `json:"images" yaml:"images"`

	// PubSub configuration for chat message events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Notifier configuration for the push notification worker
	Notifier *NotifierConfig `json:"notifier" yaml:"notifier"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// GatewayConfig defines which backend serves documents, blobs and auth
type GatewayConfig struct {
	// Provider type: "firebase" or "memory"
	Provider string `json:"provider" yaml:"provider"`
}

// FirebaseConfig defines Firebase project configuration
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
	StorageBucket   string `json:"storageBucket" yaml:"storageBucket"`

	// Web API key used for email/password and federated sign-in
	APIKey string `json:"apiKey" yaml:"apiKey"`

	// Request URI reported to the identity toolkit for federated sign-in
	RequestURI string `json:"requestUri" yaml:"requestUri"`
}

// CacheConfig defines the local persistence cache backend
type CacheConfig struct {
	// Provider type: "memory", "redis" or "pebble"
	Provider string `json:"provider" yaml:"provider"`

	// Entry time-to-live, zero keeps entries until removed
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	Redis struct {
		Addr     string `json:"addr" yaml:"addr"`
		Username string `json:"username" yaml:"username"`
		Password string `json:"password" yaml:"password"`
		DB       int    `json:"db" yaml:"db"`
	} `json:"redis" yaml:"redis"`

	Pebble struct {
		Path string `json:"path" yaml:"path"`
	} `json:"pebble" yaml:"pebble"`
}

// SessionConfig defines client session settings
type SessionConfig struct {
	Secret string        `json:"secret" yaml:"secret"`
	TTL    time.Duration `json:"ttl" yaml:"ttl"`
}

// ImagesConfig defines how uploaded images are normalized before storage
type ImagesConfig struct {
	MaxDimension int `json:"maxDimension" yaml:"maxDimension"`
	JPEGQuality  int `json:"jpegQuality" yaml:"jpegQuality"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// NotifierConfig defines the push notification worker
type NotifierConfig struct {
	Port int `json:"port" yaml:"port"`

	// Push endpoint path that receives Pub/Sub push envelopes
	PushPath string `json:"pushPath" yaml:"pushPath"`

	// Notification title used when the sender has no display name
	DefaultTitle string `json:"defaultTitle" yaml:"defaultTitle"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment overrides: FIREBASE_PROJECTID -> firebase.projectId
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Gateway == nil {
		cfg.Gateway = &GatewayConfig{Provider: "memory"}
	}

	if cfg.Cache == nil {
		cfg.Cache = &CacheConfig{Provider: "memory"}
	}

	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = defaultSessionTTL
	}

	if cfg.Images == nil {
		cfg.Images = &ImagesConfig{}
	}
	if cfg.Images.MaxDimension <= 0 {
		cfg.Images.MaxDimension = defaultImageMaxDimension
	}
	if cfg.Images.JPEGQuality <= 0 || cfg.Images.JPEGQuality > 100 {
		cfg.Images.JPEGQuality = defaultImageJPEGQuality
	}

	if cfg.Notifier == nil {
		cfg.Notifier = &NotifierConfig{}
	}
	if cfg.Notifier.Port <= 0 {
		cfg.Notifier.Port = defaultNotifierPort
	}
	if cfg.Notifier.PushPath == "" {
		cfg.Notifier.PushPath = defaultNotifierPushPath
	}
	if cfg.Notifier.DefaultTitle == "" {
		cfg.Notifier.DefaultTitle = defaultNotifierTitle
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
