package entity

import (
	"maps"
	"path"
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// Good errors
var (
	ErrGoodOwnerRequired = errors.New("good owner id is required")
	ErrGoodPortRequired  = errors.New("good port id is required")
)

var unsafeFileNameChars = regexp.MustCompile(`[.#$/\[\]]`)

// Good is a catalog item listed by a seller at a port.
type Good struct {
	ID                 string            `json:"id"`
	OwnerID            string            `json:"ownerId"`
	PortID             string            `json:"portId"`
	CategoryID         string            `json:"categoryId"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Price              float64           `json:"price"`
	Currency           string            `json:"currency"`
	Images             map[string]string `json:"images"` // image key -> download URL
	Available          bool              `json:"available"`
	CreateTimestampGMT time.Time         `json:"createTimestampGMT"`
}

// Validate checks the persistence invariant: every stored good has an owner and a port.
func (g *Good) Validate() error {
	if g.OwnerID == "" {
		return ErrGoodOwnerRequired
	}
	if g.PortID == "" {
		return ErrGoodPortRequired
	}

	return nil
}

// Clone returns a copy of the good with its own image map.
func (g *Good) Clone() *Good {
	if g == nil {
		return nil
	}

	cp := *g
	cp.Images = maps.Clone(g.Images)

	return &cp
}

// StoragePrefix returns the blob path prefix holding the good's images.
func (g *Good) StoragePrefix() string {
	return path.Join("goods", g.PortID, g.OwnerID, g.ID)
}

// MergeImages applies an image edit: keys in deleted are dropped from previous
// and uploaded entries are added. Neither input map is modified.
func MergeImages(previous map[string]string, deleted []string, uploaded map[string]string) map[string]string {
	merged := make(map[string]string, len(previous)+len(uploaded))
	maps.Copy(merged, previous)

	for _, key := range deleted {
		delete(merged, key)
	}

	maps.Copy(merged, uploaded)

	return merged
}

// SanitizeFileName replaces characters that are not allowed in document keys.
func SanitizeFileName(name string) string {
	return unsafeFileNameChars.ReplaceAllString(name, "_")
}
