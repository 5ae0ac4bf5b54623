package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/claudesync/internal/errors"
	"github.com/thoreinstein/claudesync/internal/paths"
)

var genDocCmd = &cobra.Command{
	Use:         "gen-doc",
	Short:       "Generate Markdown documentation for the CLI",
	Hidden:      true,
	Args:        cobra.NoArgs,
	Annotations: skipConfigCheck(),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, _ := cmd.Flags().GetString("dir")
		if outputDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Pass --dir")
		}

		if err := paths.EnsureDir(outputDir, paths.DefaultDirPerm); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		// Front matter makes each page usable by a static site generator.
		root := cmd.Root()
		root.DisableAutoGenTag = true
		err := doc.GenMarkdownTreeCustom(root, outputDir, filePrepender, linkHandler)
		if err != nil {
			return errors.Wrap(err, "generating markdown")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "Output directory for documentation")
	rootCmd.AddCommand(genDocCmd)
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// claudesync_config_set.md -> claudesync config set
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s"
draft: false
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
