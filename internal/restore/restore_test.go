package restore

import (
	"context"
	"testing"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRestoreFiles(t *testing.T) {
	ctx := context.Background()
	reg := layout.Default()

	t.Run("base and page snapshots are copied back", func(t *testing.T) {
		fls := afs.Memory()
		afs.WriteFile(fls, reg.Files.LayxCss, []byte(".min{}"))
		afs.WriteFile(fls, reg.Files.LayxJs, []byte("min()"))
		afs.WriteFile(fls, "assets/js/pages/home.js", []byte("min()"))

		afs.WriteFile(fls, reg.Files.OutputCss, []byte("@import url(a.css);"))
		afs.WriteFile(fls, reg.Files.OutputJs, []byte("import './a.js';"))
		afs.WriteFile(fls, reg.SnapshotPath("assets/js/pages/home.js"), []byte("import './home-a.js';"))
		afs.WriteFile(fls, reg.SnapshotPath("assets/js/pages/blog/post.js"), []byte("post()"))

		restored, err := NewRestorer(fls, reg, zerolog.Nop()).RestoreFiles(ctx)
		if !assert.NoError(t, err) {
			return
		}

		assert.Equal(t, []string{
			reg.Files.LayxCss,
			reg.Files.LayxJs,
			"assets/js/pages/blog/post.js",
			"assets/js/pages/home.js",
		}, restored)

		content, _ := afs.ReadFile(fls, reg.Files.LayxCss)
		assert.Equal(t, "@import url(a.css);", string(content))

		content, _ = afs.ReadFile(fls, "assets/js/pages/home.js")
		assert.Equal(t, "import './home-a.js';", string(content))

		content, _ = afs.ReadFile(fls, "assets/js/pages/blog/post.js")
		assert.Equal(t, "post()", string(content))
	})

	t.Run("missing base snapshot", func(t *testing.T) {
		fls := afs.Memory()
		afs.WriteFile(fls, reg.Files.LayxCss, []byte(".min{}"))

		_, err := NewRestorer(fls, reg, zerolog.Nop()).RestoreFiles(ctx)
		assert.Error(t, err)
	})
}

func TestRestoreSnapshotted(t *testing.T) {
	ctx := context.Background()
	reg := layout.Default()

	t.Run("missing base snapshot is skipped", func(t *testing.T) {
		fls := afs.Memory()
		afs.WriteFile(fls, reg.Files.LayxCss, []byte(".min{}"))
		afs.WriteFile(fls, reg.Files.LayxJs, []byte("import './a.js';"))
		afs.WriteFile(fls, reg.Files.OutputCss, []byte("@import url(a.css);"))

		restored, err := NewRestorer(fls, reg, zerolog.Nop()).RestoreSnapshotted(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, []string{reg.Files.LayxCss}, restored)

		content, _ := afs.ReadFile(fls, reg.Files.LayxCss)
		assert.Equal(t, "@import url(a.css);", string(content))

		content, _ = afs.ReadFile(fls, reg.Files.LayxJs)
		assert.Equal(t, "import './a.js';", string(content))
	})

	t.Run("no snapshots", func(t *testing.T) {
		fls := afs.Memory()
		afs.WriteFile(fls, reg.Files.LayxCss, []byte(".a{}"))

		restored, err := NewRestorer(fls, reg, zerolog.Nop()).RestoreSnapshotted(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Empty(t, restored)
	})
}
