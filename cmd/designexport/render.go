package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/designexport/internal/export"
	"github.com/dharsanguruparan/designexport/internal/imaging"
	"github.com/dharsanguruparan/designexport/internal/model"
)

const (
	cliMaxSourceBytes = 100 << 20
	cliFetchTimeout   = 30 * time.Second
	cliMaxPixels      = 200_000_000
)

type renderFlags struct {
	format   string
	scale    int
	quality  float64
	crop     string
	width    int
	height   int
	maxBytes int64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.crop, "crop", "", "Crop area as x,y,width,height in source pixels")
	cmd.Flags().Float64Var(&f.quality, "quality", model.DefaultQuality, "Encoder quality between 0.1 and 1.0")
}

// pipelineFor picks a loader by source: http(s) URLs are fetched, anything
// else is read from disk.
func pipelineFor(source string) *imaging.Pipeline {
	var loader imaging.Loader = imaging.FileLoader{MaxBytes: cliMaxSourceBytes}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		loader = imaging.NewHTTPLoader(cliFetchTimeout, cliMaxSourceBytes)
	}
	return imaging.NewPipeline(loader, imaging.StdEncoder{}, cliMaxPixels)
}

func newRenderCmd() *cobra.Command {
	var (
		f   renderFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "render SOURCE",
		Short: "Render one export variant to a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			if out == "" {
				base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				out = fmt.Sprintf("%s@%dx.%s", export.SanitizeName(base), f.scale, opts.Format)
			}
			res, err := render(cmd.Context(), pipelineFor(args[0]), args[0], f.maxBytes, opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, res.Buffer, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%dx%d\t%d bytes\tquality %.1f\tscale %.1f\n",
				out, res.Width, res.Height, res.SizeBytes, res.Quality, res.Scale)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.format, "format", "png", "Output format (png, jpg, webp, svg)")
	cmd.Flags().IntVar(&f.scale, "scale", 1, "Scale factor (1, 2 or 3)")
	cmd.Flags().IntVar(&f.width, "width", 0, "Target width; fits within width/height when set")
	cmd.Flags().IntVar(&f.height, "height", 0, "Target height; fits within width/height when set")
	cmd.Flags().Int64Var(&f.maxBytes, "max-bytes", 0, "Shrink quality then scale until the output fits")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default NAME@SCALEx.FORMAT)")
	return cmd
}

func render(ctx context.Context, p *imaging.Pipeline, source string, maxBytes int64, opts imaging.Options) (*model.ProcessedImage, error) {
	if maxBytes > 0 {
		return p.OptimizeToSize(ctx, source, maxBytes, opts)
	}
	return p.Process(ctx, source, opts)
}

func (f *renderFlags) options() (imaging.Options, error) {
	format, err := model.ParseFormat(f.format)
	if err != nil {
		return imaging.Options{}, fmt.Errorf("%w: %v", export.ErrInvalidFormat, err)
	}
	if !model.Scale(f.scale).Valid() {
		return imaging.Options{}, fmt.Errorf("%w: %d", export.ErrInvalidScale, f.scale)
	}
	opts, err := f.shared()
	if err != nil {
		return imaging.Options{}, err
	}
	opts.Format = format
	opts.Scale = float64(f.scale)
	if f.width > 0 {
		opts.TargetWidth = &f.width
	}
	if f.height > 0 {
		opts.TargetHeight = &f.height
	}
	return opts, nil
}

// shared validates the flags common to render and batch.
func (f *renderFlags) shared() (imaging.Options, error) {
	if f.quality < model.MinQuality || f.quality > model.MaxQuality {
		return imaging.Options{}, fmt.Errorf("%w: %v", export.ErrInvalidQuality, f.quality)
	}
	opts := imaging.Options{Quality: f.quality}
	if f.crop != "" {
		crop, err := parseCrop(f.crop)
		if err != nil {
			return imaging.Options{}, err
		}
		opts.Crop = crop
	}
	return opts, nil
}

func parseCrop(s string) (*model.CropArea, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: want x,y,width,height, got %q", export.ErrInvalidCropArea, s)
	}
	var v [4]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", export.ErrInvalidCropArea, p, err)
		}
		v[i] = n
	}
	crop := &model.CropArea{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if !crop.Valid() {
		return nil, fmt.Errorf("%w: %q", export.ErrInvalidCropArea, s)
	}
	return crop, nil
}
