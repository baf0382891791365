package buildinfo

import (
	"errors"
	"testing"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/stretchr/testify/assert"
)

const INFO_PATH = "layx/assets/build_info.json"

func TestStore(t *testing.T) {

	t.Run("missing file", func(t *testing.T) {
		store := NewStore(afs.Memory(), INFO_PATH)

		info, found, err := store.Read()
		if !assert.NoError(t, err) {
			return
		}
		assert.False(t, found)
		assert.False(t, info.Built())
	})

	t.Run("merge keeps previous keys", func(t *testing.T) {
		store := NewStore(afs.Memory(), INFO_PATH)

		_, err := store.Merge(Info{"a": true})
		if !assert.NoError(t, err) {
			return
		}
		_, err = store.Merge(Info{"b": false})
		if !assert.NoError(t, err) {
			return
		}

		info, found, err := store.Read()
		if !assert.NoError(t, err) {
			return
		}
		assert.True(t, found)
		assert.Equal(t, Info{"a": true, "b": false}, info)
	})

	t.Run("merge overrides a key", func(t *testing.T) {
		store := NewStore(afs.Memory(), INFO_PATH)

		store.Merge(Info{BUILD_KEY: true, IMAGE_OPTIMIZED_KEY: true})
		info, err := store.Merge(Info{BUILD_KEY: false})
		if !assert.NoError(t, err) {
			return
		}

		assert.False(t, info.Built())
		assert.True(t, info.ImageOptimized())
	})

	t.Run("stored {build: false} is found", func(t *testing.T) {
		store := NewStore(afs.Memory(), INFO_PATH)
		store.Merge(Info{BUILD_KEY: false})

		info, found, err := store.Read()
		if !assert.NoError(t, err) {
			return
		}
		assert.True(t, found)
		assert.False(t, info.Built())
	})

	t.Run("invalid content", func(t *testing.T) {
		fls := afs.Memory()
		afs.WriteFile(fls, INFO_PATH, []byte(`{"build": `))

		_, _, err := NewStore(fls, INFO_PATH).Read()
		assert.True(t, errors.Is(err, ErrInvalidInfo))
	})
}
