// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs_cmd.go - document list, upload, delete and reset commands.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jeranaias/docqa-tui/internal/documents"
	"github.com/jeranaias/docqa-tui/internal/model"
	"github.com/jeranaias/docqa-tui/internal/util"
)

const docsUsage = "docqa docs [list | upload FILE... | delete ID [--yes] | reset [--yes]]"

// DocumentJSON is the JSON form of one listed document.
type DocumentJSON struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"created_at,omitempty"`
}

// HandleDocs dispatches the docs subcommands.
func HandleDocs(env *Env, args Args) error {
	switch args.Subcommand {
	case "", "list", "ls":
		return docsList(env, args)
	case "upload", "add":
		return docsUpload(env, args)
	case "delete", "rm", "remove":
		return docsDelete(env, args)
	case "reset":
		return docsReset(env, args)
	default:
		reason := "unknown docs subcommand"
		if s := suggest(args.Subcommand, docsSubcommands); s != "" {
			reason += ", did you mean '" + s + "'?"
		}
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  reason,
			Example: docsUsage,
		}
	}
}

func docsList(env *Env, args Args) error {
	ctx, cancel := env.Context()
	defer cancel()

	reg := env.Services.Documents
	if err := reg.Refresh(ctx); err != nil {
		return err
	}
	docs := reg.Documents()

	if args.JSON {
		out := make([]DocumentJSON, 0, len(docs))
		for _, d := range docs {
			out = append(out, documentJSON(d))
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(docs) == 0 {
		env.Printf("%s\n", DimStyle.Render("No documents. Upload one with 'docqa docs upload FILE'."))
		return nil
	}
	printDocuments(env, docs)
	return nil
}

func printDocuments(env *Env, docs []model.Document) {
	idWidth := 2
	for _, d := range docs {
		if w := util.StringWidth(d.ID); w > idWidth {
			idWidth = w
		}
	}
	nameWidth := GetTerminalWidth() - idWidth - 22
	if nameWidth < 16 {
		nameWidth = 16
	}
	if nameWidth > 60 {
		nameWidth = 60
	}

	header := util.PadWidth("ID", idWidth) + "  " + util.PadWidth("FILENAME", nameWidth) + "  CREATED"
	fmt.Fprintln(env.Stdout, DimStyle.Render(header))
	for _, d := range docs {
		fmt.Fprintf(env.Stdout, "%s  %s  %s\n",
			util.PadWidth(d.ID, idWidth),
			ValueStyle.Render(util.PadWidth(util.TruncateWidth(d.Filename, nameWidth), nameWidth)),
			DimStyle.Render(formatCreated(d)),
		)
	}
}

func docsUpload(env *Env, args Args) error {
	if len(args.Raw) == 0 {
		return &documents.ValidationError{Message: documents.NoFilesMessage}
	}

	files := make([]documents.File, 0, len(args.Raw))
	for _, p := range args.Raw {
		files = append(files, documents.FileFromPath(p))
	}

	ctx, cancel := env.Context()
	defer cancel()

	if !args.Quiet && !args.JSON {
		env.Printf("%s\n", DimStyle.Render(fmt.Sprintf("Uploading %d file(s)...", len(files))))
	}
	res, err := env.Services.Documents.Upload(ctx, files)
	if err != nil {
		return err
	}

	if args.JSON {
		out := struct {
			Uploaded []DocumentJSON `json:"uploaded"`
			Skipped  int            `json:"skipped"`
			Message  string         `json:"message"`
		}{Uploaded: []DocumentJSON{}, Skipped: res.Skipped, Message: res.Message}
		for _, d := range res.Uploaded {
			out.Uploaded = append(out.Uploaded, documentJSON(d))
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if res.Warning {
		env.Printf("%s %s\n", WarningStyle.Render("[WARN]"), res.Message)
		return nil
	}
	env.Printf("%s %s\n", SuccessStyle.Render("[OK]"), res.Message)
	if !args.Quiet {
		for _, d := range res.Uploaded {
			env.Printf("  %s %s\n", DimStyle.Render(d.ID), d.Filename)
		}
	}
	return nil
}

func docsDelete(env *Env, args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("ID", "docqa docs delete 42")
	}
	id := strings.TrimSpace(args.Raw[0])

	if err := RequireConfirmation(env, documents.ConfirmDeletePrompt+" ("+id+")",
		ConfirmationOptions{Yes: args.Yes, JSONMode: args.JSON}); err != nil {
		return err
	}

	ctx, cancel := env.Context()
	defer cancel()
	if err := env.Services.Documents.Delete(ctx, id); err != nil {
		return err
	}
	if !args.Quiet {
		env.Printf("%s Deleted document %s\n", SuccessStyle.Render("[OK]"), id)
	}
	return nil
}

func docsReset(env *Env, args Args) error {
	if err := RequireConfirmation(env, documents.ConfirmResetPrompt,
		ConfirmationOptions{Yes: args.Yes, JSONMode: args.JSON}); err != nil {
		return err
	}

	ctx, cancel := env.Context()
	defer cancel()
	if err := env.Services.Documents.DeleteAll(ctx); err != nil {
		return err
	}
	if !args.Quiet {
		env.Printf("%s Knowledge base reset\n", SuccessStyle.Render("[OK]"))
	}
	return nil
}

func formatCreated(d model.Document) string {
	if !d.HasCreatedAt() {
		return "-"
	}
	return d.CreatedAt.Local().Format("2006-01-02 15:04")
}

func documentJSON(d model.Document) DocumentJSON {
	out := DocumentJSON{ID: d.ID, Filename: d.Filename}
	if d.HasCreatedAt() {
		out.CreatedAt = d.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}
