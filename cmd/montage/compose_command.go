package main

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"montage/internal/canvas"
	"montage/internal/imaging"
	"montage/internal/session"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var shaderFlags []string
	var cutout bool
	var canvasWidth, canvasHeight float64

	cmd := &cobra.Command{
		Use:   "compose <image>...",
		Short: "Build a collage from image files and save it",
		Long: strings.TrimSpace(`
Build a collage from one or more image files. Each photo is placed on the
canvas in order; shaders and the optional background cutout apply to every
photo. The collage is saved to the gallery and its flattened snapshot is
exported to the configured export directory.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shaders := make([]canvas.Shader, 0, len(shaderFlags))
			for _, name := range shaderFlags {
				shader, ok := canvas.ParseShader(name)
				if !ok {
					return fmt.Errorf("unknown shader %q (run `montage shaders` for the list)", name)
				}
				shaders = append(shaders, shader)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sess, err := session.Open(cfg, ctx.loggerValue())
			if err != nil {
				return err
			}
			defer sess.Close()

			engine := sess.Engine()
			engine.SetCanvasSize(canvas.Size{Width: canvasWidth, Height: canvasHeight})

			for _, path := range args {
				img, err := decodeImageFile(path)
				if err != nil {
					return err
				}
				engine.AddImage(img)
				for _, shader := range shaders {
					engine.ToggleShader(shader)
				}
				if cutout {
					engine.ToggleCutout()
				}
			}
			engine.Wait()

			if err := engine.SaveCollage(cmd.Context()); err != nil {
				return err
			}
			engine.Wait()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved collage %s (%d items)\n", engine.CollageID(), len(args))
			fmt.Fprintf(out, "Snapshot exported to %s\n", cfg.Paths.ExportDir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&shaderFlags, "shader", nil, "Shader to apply to every photo (repeatable)")
	cmd.Flags().BoolVar(&cutout, "cutout", false, "Cut out the foreground subject of every photo")
	cmd.Flags().Float64Var(&canvasWidth, "width", 1080, "Canvas width in points")
	cmd.Flags().Float64Var(&canvasHeight, "height", 1920, "Canvas height in points")
	return cmd
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}
