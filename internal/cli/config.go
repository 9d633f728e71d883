// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - config command.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/docqa-tui/internal/config"
)

// HandleConfig prints the effective configuration or the config file path,
// or writes a default config file.
func HandleConfig(args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		fmt.Fprint(w, cfg.String())
		return nil

	case "init":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return WrapError(err, "config path")
		}
		if _, err := os.Stat(path); err == nil && !args.Yes {
			return &ValidationError{
				Field:   "config",
				Value:   path,
				Reason:  "file already exists",
				Example: "docqa config init --yes",
			}
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return WrapError(err, "write config")
		}
		fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return WrapError(err, "config path")
		}
		fmt.Fprintln(w, path)
		return nil

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "docqa config [show|path|init]",
		}
	}
}
