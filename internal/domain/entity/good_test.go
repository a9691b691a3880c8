package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeImages(t *testing.T) {
	previous := map[string]string{"a": "urlA", "b": "urlB"}
	uploaded := map[string]string{"c": "urlC"}

	merged := MergeImages(previous, []string{"a"}, uploaded)

	assert.Equal(t, map[string]string{"b": "urlB", "c": "urlC"}, merged)
	assert.Equal(t, map[string]string{"a": "urlA", "b": "urlB"}, previous, "previous map must not change")
}

func TestMergeImages_DeleteUnknownKeyIsNoop(t *testing.T) {
	merged := MergeImages(map[string]string{"a": "urlA"}, []string{"zzz"}, nil)

	assert.Equal(t, map[string]string{"a": "urlA"}, merged)
}

func TestGood_Validate(t *testing.T) {
	tests := []struct {
		name string
		good Good
		want error
	}{
		{name: "valid", good: Good{OwnerID: "u1", PortID: "p1"}},
		{name: "missing owner", good: Good{PortID: "p1"}, want: ErrGoodOwnerRequired},
		{name: "missing port", good: Good{OwnerID: "u1"}, want: ErrGoodPortRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.good.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestGood_CloneDetachesImages(t *testing.T) {
	g := &Good{ID: "g1", Images: map[string]string{"a": "urlA"}}
	cp := g.Clone()
	cp.Images["b"] = "urlB"

	assert.Len(t, g.Images, 1)
	assert.Equal(t, "goods/p1/u1/g1", (&Good{ID: "g1", OwnerID: "u1", PortID: "p1"}).StoragePrefix())
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "photo_final_1__jpg", SanitizeFileName("photo#final[1].jpg"))
	assert.Equal(t, "a_b_c_d", SanitizeFileName("a/b$c.d"))
}
