package build

import (
	"fmt"
	"slices"

	"github.com/arif891/layx-sub000/internal/buildinfo"
)

type State int

const (
	Unbuilt State = iota
	Built
)

func StateOf(info buildinfo.Info) State {
	if info.Built() {
		return Built
	}
	return Unbuilt
}

func (s State) String() string {
	if s == Built {
		return "built"
	}
	return "unbuilt"
}

type Transition int

const (
	Build Transition = iota
	Unbuild
	Rebuild
)

func (t Transition) String() string {
	switch t {
	case Build:
		return "build"
	case Unbuild:
		return "unbuild"
	case Rebuild:
		return "rebuild"
	}
	panic(fmt.Errorf("invalid transition %d", int(t)))
}

type Step int

const (
	OptimizeImagesStep Step = iota + 1
	ResetSnapshotsStep
	RestoreStep
	AssembleStep
	BundleStep
	ToggleHTMLForBuildStep
	ToggleHTMLForUnbuildStep
	MarkBuiltStep
	MarkUnbuiltStep
)

var stepNames = map[Step]string{
	OptimizeImagesStep:       "optimize images",
	ResetSnapshotsStep:       "reset snapshots",
	RestoreStep:              "restore",
	AssembleStep:             "assemble",
	BundleStep:               "bundle",
	ToggleHTMLForBuildStep:   "toggle HTML tags (build)",
	ToggleHTMLForUnbuildStep: "toggle HTML tags (unbuild)",
	MarkBuiltStep:            "mark built",
	MarkUnbuiltStep:          "mark unbuilt",
}

func (s Step) String() string {
	return stepNames[s]
}

var (
	fullBuildSteps = []Step{
		OptimizeImagesStep,
		ResetSnapshotsStep,
		AssembleStep,
		BundleStep,
		ToggleHTMLForBuildStep,
		MarkBuiltStep,
	}

	unbuildSteps = []Step{
		RestoreStep,
		ToggleHTMLForUnbuildStep,
		MarkUnbuiltStep,
	}

	//restore-only unbuild followed by an assemble-only build.
	rebuildSteps = []Step{
		RestoreStep,
		MarkUnbuiltStep,
		ResetSnapshotsStep,
		AssembleStep,
		BundleStep,
		MarkBuiltStep,
	}
)

// Plan returns the transition actually performed when $requested is requested in $state, and its steps.
// Building a built project is a rebuild: assembling already assembled files would inline the base content
// a second time. Unbuilding an unbuilt project has no steps.
func Plan(state State, requested Transition) (Transition, []Step) {
	switch requested {
	case Build, Rebuild:
		if state == Built {
			return Rebuild, slices.Clone(rebuildSteps)
		}
		return Build, slices.Clone(fullBuildSteps)
	case Unbuild:
		if state == Built {
			return Unbuild, slices.Clone(unbuildSteps)
		}
		return Unbuild, nil
	}
	panic(fmt.Errorf("invalid transition %d", int(requested)))
}
