// Package firebase implements the remote data gateway on Firestore, Cloud
// Storage, Firebase Auth and the Identity Toolkit.
package firebase

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/fx"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"harbor/config"
	"harbor/internal/errors"
)

// Clients bundles the Firebase service clients of one app.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
	Bucket    *storage.BucketHandle
	Messaging *messaging.Client
	Toolkit   *identitytoolkit.Service

	bucketName string
}

// ClientsParams holds dependencies for Clients, injected by Fx
type ClientsParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewClients initializes the Firebase app and every client the gateway uses.
func NewClients(params ClientsParams) (*Clients, error) {
	cfg := params.Config.Firebase
	if cfg == nil || cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	clients, err := newClients(params.Ctx, cfg)
	if err != nil {
		return nil, err
	}

	params.Logger.Info("Firebase clients initialized",
		slog.String("project_id", cfg.ProjectID),
		slog.String("bucket", cfg.StorageBucket),
	)

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Closing Firebase clients")

			return clients.Close()
		},
	})

	return clients, nil
}

func newClients(ctx context.Context, cfg *config.FirebaseConfig) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initialize firebase app")
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get firestore client")
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fs.Close()

		return nil, errors.Wrap(err, "get auth client")
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		fs.Close()

		return nil, errors.Wrap(err, "get storage client")
	}

	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		fs.Close()

		return nil, errors.Wrap(err, "get default bucket")
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		fs.Close()

		return nil, errors.Wrap(err, "get messaging client")
	}

	// Identity toolkit calls are made on behalf of end users with the web API key.
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		fs.Close()

		return nil, errors.Wrap(err, "create identity toolkit service")
	}

	return &Clients{
		App:        app,
		Firestore:  fs,
		Auth:       authClient,
		Bucket:     bucket,
		Messaging:  messagingClient,
		Toolkit:    toolkit,
		bucketName: cfg.StorageBucket,
	}, nil
}

// Close releases the Firestore connection.
func (c *Clients) Close() error {
	return errors.WithStack(c.Firestore.Close())
}
