package remote

import (
	"fmt"

	"github.com/arif891/layx-sub000/internal/project/layout"
)

// Kind is the kind of the items installed by the add command.
type Kind int

const (
	Component Kind = iota
	Template
	Block
	Font
)

var KINDS = []Kind{Component, Template, Block, Font}

func (k Kind) String() string {
	switch k {
	case Component:
		return "component"
	case Template:
		return "template"
	case Block:
		return "block"
	case Font:
		return "font"
	}
	panic(fmt.Errorf("invalid kind %d", int(k)))
}

// RemoteDir returns the directory of the items of kind $k relative to the remote base URL.
func (k Kind) RemoteDir() string {
	return k.String() + "s"
}

// LocalDir returns the directory where the items of kind $k are installed.
func (k Kind) LocalDir(reg *layout.Registry) string {
	switch k {
	case Component:
		return reg.Directories.Components
	case Template:
		return reg.Directories.Templates
	case Block:
		return reg.Directories.Blocks
	case Font:
		return reg.Directories.Fonts
	}
	panic(fmt.Errorf("invalid kind %d", int(k)))
}
