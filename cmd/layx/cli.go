package main

import (
	"flag"
	"fmt"
	"io"
	"slices"
)

const (
	BUILD_SUBCMD                 = "build"
	UNBUILD_SUBCMD               = "unbuild"
	OPTIMIZE_IMAGES_SUBCMD       = "optimizeImages"
	WATCH_SUBCMD                 = "watch"
	ADD_SUBCMD                   = "add"
	VERSION_SUBCMD               = "version"
	INSTALL_COMPLETIONS_SUBCMD   = "install-completions"
	UNINSTALL_COMPLETIONS_SUBCMD = "uninstall-completions"
	HELP_SUBCMD                  = "help"
)

var (
	SUBCOMMANDS = []string{
		BUILD_SUBCMD, UNBUILD_SUBCMD, OPTIMIZE_IMAGES_SUBCMD, WATCH_SUBCMD, ADD_SUBCMD, VERSION_SUBCMD,
		INSTALL_COMPLETIONS_SUBCMD, UNINSTALL_COMPLETIONS_SUBCMD, HELP_SUBCMD,
	}

	HELP_SUBCMD_EQUIVALENTS = []string{"--help", "-help", "-h"}

	SUBCOMMAND_DESCRIPTIONS = [][2]string{
		{BUILD_SUBCMD, "assemble, minify and bundle the CSS and JS files of the project (rebuilds a built project)"},
		{UNBUILD_SUBCMD, "restore the CSS and JS sources of a built project"},
		{OPTIMIZE_IMAGES_SUBCMD, "convert the images of the project to WebP"},
		{WATCH_SUBCMD, "build the project and rebuild it each time an HTML file changes"},
		{ADD_SUBCMD, "install components (-c), templates (-t), blocks (-b) or fonts (-f), example: layx add -c navbar sheet"},
		{VERSION_SUBCMD, "print the version"},

		{INSTALL_COMPLETIONS_SUBCMD, "install CLI completions by adding the completion command to the detected rc file (supported shells are bash, zsh and fish)"},
		{UNINSTALL_COMPLETIONS_SUBCMD, "uninstall CLI completions by removing the completion command from the detected rc file"},
		{HELP_SUBCMD, "show the general help or command-specific help"},
	}

	SUBCOMMAND_DESCRIPTION_MAP = map[string]string{}

	LAYX_CMD_HELP = "usage: layx <command> [options]\n\ncommands:\n"
)

func init() {
	for _, entry := range SUBCOMMAND_DESCRIPTIONS {
		cmd, desc := entry[0], entry[1]
		SUBCOMMAND_DESCRIPTION_MAP[cmd] = desc
		LAYX_CMD_HELP += "\t" + cmd + " - " + desc + "\n"
	}
	LAYX_CMD_HELP += "\nType `layx help <command>` to get command-specific help.\n"
}

func showHelp(flags *flag.FlagSet, args []string, out io.Writer) bool {
	//only show help
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {

		cmd := flags.Name()
		if desc, ok := SUBCOMMAND_DESCRIPTION_MAP[cmd]; ok {
			fmt.Fprintln(out, desc)
		}

		flags.SetOutput(out)
		fmt.Fprint(out, "\noptions:\n")
		flags.PrintDefaults()

		return true
	}

	return false
}
