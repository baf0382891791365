package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/arif891/layx-sub000/internal/remote"
)

var (
	ADD_KIND_FLAGS = map[string]remote.Kind{
		"-c": remote.Component,
		"-t": remote.Template,
		"-b": remote.Block,
		"-f": remote.Font,
	}

	errMissingKindFlag = errors.New("names should be preceded by -c, -t, -b or -f")
	errNothingToAdd    = errors.New("nothing to add")
)

type addRequest struct {
	kind  remote.Kind
	names []string
}

// parseAddArgs parses arguments of the shape -c navbar sheet -f inter, a kind flag applies to the names
// following it.
func parseAddArgs(args []string) ([]addRequest, error) {
	var requests []addRequest

	for _, arg := range args {
		if kind, ok := ADD_KIND_FLAGS[arg]; ok {
			requests = append(requests, addRequest{kind: kind})
			continue
		}

		if arg != "" && arg[0] == '-' {
			return nil, fmt.Errorf("unknown option %s", arg)
		}

		if len(requests) == 0 {
			return nil, errMissingKindFlag
		}
		last := &requests[len(requests)-1]
		last.names = append(last.names, arg)
	}

	requests = slices.DeleteFunc(requests, func(r addRequest) bool {
		return len(r.names) == 0
	})

	if len(requests) == 0 {
		return nil, errNothingToAdd
	}
	return requests, nil
}

func addItems(args []string, outW, errW io.Writer) (statusCode int) {
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {
		fmt.Fprintln(outW, SUBCOMMAND_DESCRIPTION_MAP[ADD_SUBCMD])
		return
	}

	requests, err := parseAddArgs(args)
	if err != nil {
		fmt.Fprintln(errW, err)
		fmt.Fprintln(errW, SUBCOMMAND_DESCRIPTION_MAP[ADD_SUBCMD])
		return ERROR_STATUS_CODE
	}

	env, err := newEnvironment(".", false, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	ctx, cancel := cancelOnSigintSigterm(context.Background())
	defer cancel()

	client := newRemoteClient(env)
	banner := newBannerPrinter(outW)
	failed := false

	for _, req := range requests {
		written, err := client.Add(ctx, req.kind, req.names)
		if err != nil {
			failed = true
		}
		if len(written) > 0 {
			banner.success(fmt.Sprintf("%d file(s) written for %s(s) %v", len(written), req.kind, req.names))
		}
	}

	if failed {
		return ERROR_STATUS_CODE
	}
	return 0
}
