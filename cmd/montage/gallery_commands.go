package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"montage/internal/assets"
	"montage/internal/canvas"
	"montage/internal/gallery"
	"montage/internal/project"
)

func (c *commandContext) withGallery(fn func(*gallery.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	projects, err := project.Open(cfg)
	if err != nil {
		return err
	}
	defer projects.Close()
	assetStore, err := assets.NewStore(cfg.Paths.AssetDir, cfg.Canvas.JPEGQuality, c.loggerValue())
	if err != nil {
		return err
	}
	return fn(gallery.NewService(projects, assetStore, c.loggerValue()))
}

func newGalleryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "List stored collages, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withGallery(func(svc *gallery.Service) error {
				entries, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No collages saved yet.")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.ID.String(),
						strconv.Itoa(entry.ItemCount),
						formatTimestamp(entry.UpdatedAt),
						formatTimestamp(entry.CreatedAt),
					})
				}
				renderTable(cmd.OutOrStdout(),
					[]string{"ID", "Items", "Updated", "Created"}, rows, 2)
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <collage-id>",
		Short: "Show a stored collage and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCollageID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			projects, err := project.Open(cfg)
			if err != nil {
				return err
			}
			defer projects.Close()

			collage, err := projects.FetchOne(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Collage %s\n", collage.ID)
			fmt.Fprintf(out, "  Created:  %s\n", formatTimestamp(collage.CreatedAt))
			fmt.Fprintf(out, "  Updated:  %s\n", formatTimestamp(collage.UpdatedAt))
			fmt.Fprintf(out, "  Snapshot: %s\n", collage.SnapshotPath)
			fmt.Fprintf(out, "  Items:    %d\n\n", len(collage.Items))

			rows := make([][]string, 0, len(collage.Items))
			for _, item := range collage.Items {
				shaders := make([]string, 0, len(item.ShaderStack))
				for _, shader := range item.ShaderStack {
					shaders = append(shaders, shaderDisplayName(shader))
				}
				cutout := "no"
				if item.UsesCutout {
					cutout = "yes"
				}
				rows = append(rows, []string{
					shortID(item.ID),
					strconv.Itoa(item.ZPosition),
					fmt.Sprintf("%.0fx%.0f", item.Transform.Size.Width, item.Transform.Size.Height),
					cutout,
					strings.Join(shaders, ", "),
				})
			}
			renderTable(out, []string{"Item", "Z", "Size", "Cutout", "Shaders"}, rows, 2)
			return nil
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collage-id>",
		Short: "Delete a stored collage and its asset files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCollageID(args[0])
			if err != nil {
				return err
			}
			return ctx.withGallery(func(svc *gallery.Service) error {
				if err := svc.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted collage %s\n", id)
				return nil
			})
		},
	}
}

func newShadersCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "shaders",
		Short:       "List available shader effects",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, shader := range canvas.AllShaders() {
				rows = append(rows, []string{string(shader), shaderDisplayName(shader)})
			}
			renderTable(cmd.OutOrStdout(), []string{"Identifier", "Name"}, rows)
			return nil
		},
	}
}
