package build

import (
	"testing"

	"github.com/arif891/layx-sub000/internal/buildinfo"
	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, Unbuilt, StateOf(buildinfo.Info{}))
	assert.Equal(t, Unbuilt, StateOf(buildinfo.Info{buildinfo.BUILD_KEY: false}))
	assert.Equal(t, Built, StateOf(buildinfo.Info{buildinfo.BUILD_KEY: true}))
}

func TestPlan(t *testing.T) {
	t.Run("build an unbuilt project", func(t *testing.T) {
		transition, steps := Plan(Unbuilt, Build)
		assert.Equal(t, Build, transition)
		assert.Equal(t, []Step{
			OptimizeImagesStep, ResetSnapshotsStep, AssembleStep, BundleStep, ToggleHTMLForBuildStep, MarkBuiltStep,
		}, steps)
	})

	t.Run("build a built project", func(t *testing.T) {
		transition, steps := Plan(Built, Build)
		assert.Equal(t, Rebuild, transition)
		assert.Equal(t, []Step{
			RestoreStep, MarkUnbuiltStep, ResetSnapshotsStep, AssembleStep, BundleStep, MarkBuiltStep,
		}, steps)
		assert.NotContains(t, steps, ToggleHTMLForBuildStep)
		assert.NotContains(t, steps, OptimizeImagesStep)
	})

	t.Run("unbuild a built project", func(t *testing.T) {
		transition, steps := Plan(Built, Unbuild)
		assert.Equal(t, Unbuild, transition)
		assert.Equal(t, []Step{RestoreStep, ToggleHTMLForUnbuildStep, MarkUnbuiltStep}, steps)
	})

	t.Run("unbuild an unbuilt project", func(t *testing.T) {
		_, steps := Plan(Unbuilt, Unbuild)
		assert.Empty(t, steps)
	})

	t.Run("returned steps can be modified", func(t *testing.T) {
		_, steps := Plan(Unbuilt, Build)
		steps[0] = MarkUnbuiltStep

		_, steps = Plan(Unbuilt, Build)
		assert.Equal(t, OptimizeImagesStep, steps[0])
	})
}
