package main

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	predictDirs = predict.Dirs("*")

	completer = &complete.Command{
		Sub: map[string]*complete.Command{
			BUILD_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"no-images": predict.Nothing,
					"v":         predict.Nothing,
					"root":      predictDirs,
				},
			},
			UNBUILD_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"v":    predict.Nothing,
					"root": predictDirs,
				},
			},
			OPTIMIZE_IMAGES_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"v":    predict.Nothing,
					"root": predictDirs,
				},
			},
			WATCH_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"no-images": predict.Nothing,
					"v":         predict.Nothing,
					"root":      predictDirs,
				},
			},
			ADD_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"c": predict.Nothing,
					"t": predict.Nothing,
					"b": predict.Nothing,
					"f": predict.Nothing,
				},
			},
			VERSION_SUBCMD:               {},
			HELP_SUBCMD:                  {},
			INSTALL_COMPLETIONS_SUBCMD:   {},
			UNINSTALL_COMPLETIONS_SUBCMD: {},
		},
	}
)
