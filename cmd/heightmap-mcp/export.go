package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/canvas-heightmap/internal/config"
	"github.com/ironsheep/canvas-heightmap/internal/heightmap"
	"github.com/ironsheep/canvas-heightmap/internal/imaging"
	"github.com/ironsheep/canvas-heightmap/internal/logging"
	"github.com/ironsheep/canvas-heightmap/internal/pixels"
)

type exportOptions struct {
	in     string
	out    string
	views  []string
	region *pixels.Region
	smooth float64
	format string
	cfg    *config.Config
}

func parseExportArgs(args []string) (*exportOptions, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var (
		in     = fs.String("in", "", "image path or URL")
		out    = fs.String("out", "", "output file prefix")
		views  = fs.String("views", "average", "comma-separated views: average, red, green, blue, alpha")
		region = fs.String("region", "", "region as x,y,w,h (default full image)")
		smooth = fs.Float64("smooth", 0, "Gaussian blur radius applied while drawing")
		format = fs.String("format", "png", "output format: json or png")
		cfg    = fs.String("config", "", "TOML configuration file")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *in == "" || *out == "" {
		return nil, errors.New("-in and -out are required")
	}
	if *smooth < 0 {
		return nil, fmt.Errorf("-smooth must be >= 0, got %v", *smooth)
	}
	if *format != "json" && *format != "png" {
		return nil, fmt.Errorf("unknown format %q", *format)
	}

	opts := &exportOptions{in: *in, out: *out, smooth: *smooth, format: *format, cfg: config.Default()}
	if *cfg != "" {
		c, err := config.Load(*cfg)
		if err != nil {
			return nil, err
		}
		opts.cfg = c
	}
	smoothSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "smooth" {
			smoothSet = true
		}
	})
	if !smoothSet {
		opts.smooth = opts.cfg.Render.Smooth
	}

	seen := make(map[string]bool)
	for _, v := range strings.Split(*views, ",") {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		if v != "average" {
			if _, err := pixels.ParseChannel(v); err != nil {
				return nil, err
			}
		}
		opts.views = append(opts.views, v)
	}
	if len(opts.views) == 0 {
		return nil, errors.New("no views requested")
	}

	if *region != "" {
		r, err := parseRegion(*region)
		if err != nil {
			return nil, err
		}
		opts.region = r
	}
	return opts, nil
}

func parseRegion(s string) (*pixels.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", s, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("region %q: values must be non-negative", s)
		}
		v[i] = n
	}
	return &pixels.Region{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

func runExport(args []string) error {
	opts, err := parseExportArgs(args)
	if err != nil {
		return err
	}
	logging.Setup(&opts.cfg.Logging)
	defer logging.Shutdown()

	paths, err := export(context.Background(), opts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

// export renders opts.in once and writes every requested view. Views are
// extracted and written concurrently; the rendered surface is shared.
func export(ctx context.Context, opts *exportOptions) ([]string, error) {
	cfg := opts.cfg
	if cfg == nil {
		cfg = config.Default()
	}
	src := cfg.Source
	loader := imaging.NewLoader(imaging.LoaderOptions{
		Timeout:  src.Timeout(),
		MaxBytes: src.Limit(),
		NoCache:  true,
	})
	hm := heightmap.New(loader, imaging.RenderOptions{Smooth: opts.smooth})
	if _, err := hm.Use(ctx, heightmap.URL(opts.in)); err != nil {
		return nil, err
	}
	if _, err := hm.Draw(); err != nil {
		return nil, err
	}

	paths := make([]string, len(opts.views))
	g, _ := errgroup.WithContext(ctx)
	for i, view := range opts.views {
		i, view := i, view
		g.Go(func() error {
			grid, err := viewGrid(hm, view, opts.region)
			if err != nil {
				return fmt.Errorf("view %s: %w", view, err)
			}
			path := fmt.Sprintf("%s-%s.%s", opts.out, view, opts.format)
			if err := writeGrid(grid, path, opts.format); err != nil {
				return fmt.Errorf("view %s: %w", view, err)
			}
			logging.Infof("wrote %s (%d rows)", path, len(grid))
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func viewGrid(hm *heightmap.Heightmap, view string, r *pixels.Region) ([][]byte, error) {
	if view == "average" {
		return hm.AverageArray(r)
	}
	ch, err := pixels.ParseChannel(view)
	if err != nil {
		return nil, err
	}
	return hm.ChannelArray(ch, r)
}

func writeGrid(grid [][]byte, path, format string) error {
	if format == "png" {
		return imaging.SavePreview(grid, path)
	}

	rows := make([][]int, len(grid))
	for i, row := range grid {
		rows[i] = make([]int, len(row))
		for j, v := range row {
			rows[i][j] = int(v)
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode grid: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write grid: %w", err)
	}
	return nil
}
