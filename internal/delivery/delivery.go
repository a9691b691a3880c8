// Package delivery defines the servers started by the binaries.
package delivery

import "context"

// Delivery is a long running server started by fx.
type Delivery interface {
	Serve(ctx context.Context) error
}
