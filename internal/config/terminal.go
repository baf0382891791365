package config

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
)

var (
	FORCE_COLOR           bool
	TRUECOLOR_COLORTERM   bool
	TERM_256COLOR_CAPABLE bool
	NO_COLOR              bool
	SHOULD_COLORIZE       bool

	COLOR_PROFILE = termenv.Ascii
)

func init() {
	detectTerminalCapabilities()
}

func detectTerminalCapabilities() {
	// FORCE COLOR

	if s, ok := os.LookupEnv("FORCE_COLOR"); ok {
		FORCE_COLOR = isTruthy(s)
	}

	//TERMCOLOR

	TRUECOLOR_COLORTERM = os.Getenv("COLORTERM") == "truecolor"

	//NO_COLOR

	if s, ok := os.LookupEnv("NO_COLOR"); ok {
		NO_COLOR = isTruthy(s)
	}

	//TERM

	term := os.Getenv("TERM")
	if strings.Contains(term, "256color") {
		TERM_256COLOR_CAPABLE = true
	}

	//

	SHOULD_COLORIZE = !NO_COLOR && (FORCE_COLOR || TRUECOLOR_COLORTERM || TERM_256COLOR_CAPABLE)

	switch {
	case !SHOULD_COLORIZE:
		COLOR_PROFILE = termenv.Ascii
	case TRUECOLOR_COLORTERM:
		COLOR_PROFILE = termenv.TrueColor
	case TERM_256COLOR_CAPABLE:
		COLOR_PROFILE = termenv.ANSI256
	default:
		COLOR_PROFILE = termenv.ANSI
	}
}

func isTruthy(s string) bool {
	return len(s) != 0 && s != "false" && s != "0"
}
