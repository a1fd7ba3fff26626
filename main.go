// Command wigmesh turns a vehicle script into triangle meshes.
//
//	wigmesh mesh -i craft.wig [-o craft.stl] [--solid] [--union] [--png craft.png]
//	wigmesh check -i craft.wig
//	wigmesh airfoil -m 0.02 -p 0.4 -t 0.12 [-o section.png]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chazu/wigmesh/internal/config"
	"github.com/chazu/wigmesh/internal/logging"
	"github.com/chazu/wigmesh/pkg/airfoil"
	"github.com/chazu/wigmesh/pkg/engine"
	"github.com/chazu/wigmesh/pkg/export"
	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/preview"
	"github.com/spf13/pflag"
)

const usage = `usage: wigmesh <command> [flags]

commands:
  mesh     mesh a vehicle script and write STL (and optionally a PNG preview)
  check    validate a vehicle script
  airfoil  print or plot one airfoil section

run "wigmesh <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "mesh":
		err = runMesh(args[1:], stdout, stderr)
	case "check":
		err = runCheck(args[1:], stdout, stderr)
	case "airfoil":
		err = runAirfoil(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "wigmesh: unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return 0
	default:
		fmt.Fprintf(stderr, "wigmesh: %v\n", err)
		return 1
	}
}

// commonFlags registers the flags shared by script commands and returns
// the script and config paths.
func commonFlags(fs *pflag.FlagSet) (in, cfg *string) {
	in = fs.StringP("in", "i", "", "vehicle script")
	cfg = fs.StringP("config", "c", "", "config file (json, yaml or toml)")
	fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.Int("chord-res", 0, "points per airfoil surface (default from config)")
	fs.Int("span-res", 0, "slices per wing segment (default from config)")
	fs.Int("long-res", 0, "fuselage stations (default from config)")
	fs.Int("radial-res", 0, "points per fuselage ring (default from config)")
	return in, cfg
}

// setup parses args, loads config and the script named by -in.
func setup(fs *pflag.FlagSet, args []string, in, cfgPath *string, stderr io.Writer) (*App, string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if *in == "" && fs.NArg() > 0 {
		*in = fs.Arg(0)
	}
	if *in == "" {
		return nil, "", errors.New("no vehicle script given (-i)")
	}
	cfg, err := config.Load(*cfgPath, fs)
	if err != nil {
		return nil, "", err
	}
	src, err := os.ReadFile(*in)
	if err != nil {
		return nil, "", err
	}
	app := NewApp(cfg, logging.New(stderr, cfg.LogLevel, cfg.LogFormat))
	return app, string(src), nil
}

func runMesh(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("mesh", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	in, cfgPath := commonFlags(fs)
	out := fs.StringP("out", "o", "", "STL output path (default <script>.stl in export.output_dir)")
	solid := fs.Bool("solid", false, "show every part capped in the PNG preview")
	doUnion := fs.Bool("union", false, "merge all parts into one solid")
	pngPath := fs.String("png", "", "also write a shaded PNG preview")
	fs.String("kernel", config.KernelSDF, "union kernel: sdfx or concat")
	fs.Int("cells", 0, "marching cubes cells along the longest axis (default from config)")
	fs.Int("refine", 0, "midpoint subdivisions before union")
	fs.Bool("ascii", false, "write ASCII STL")

	app, src, err := setup(fs, args, in, cfgPath, stderr)
	if err != nil {
		return err
	}
	v, err := app.Load(src)
	if err != nil {
		return err
	}
	for _, w := range engine.Check(v) {
		app.log.Warn().Str("part", w.Part).Str("code", w.Code).Msg(w.Message)
	}

	var s *geom.Solid
	if *doUnion {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		s, err = app.Union(ctx, v, func(msg string, pct int) {
			app.log.Info().Int("percent", pct).Msg(msg)
		})
	} else {
		s, err = app.Skin(v)
	}
	if err != nil {
		return err
	}

	name := v.Name
	base := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	if name == "" {
		name = base
	}
	if *out == "" {
		*out = filepath.Join(app.cfg.Export.OutputDir, base+".stl")
	}
	if err := export.SaveSTL(*out, s, name, app.cfg.Export.ASCII); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d triangles)\n", *out, s.TriangleCount())

	if *pngPath != "" {
		shown := s
		if !*doUnion && !*solid {
			if shown, err = app.Snapshot(v, false); err != nil {
				return err
			}
		}
		view := preview.DefaultView()
		view.Width, view.Height = app.cfg.Preview.Width, app.cfg.Preview.Height
		if err := preview.SavePNG(*pngPath, shown, view); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", *pngPath)
	}
	return nil
}

func runCheck(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	in, cfgPath := commonFlags(fs)

	app, src, err := setup(fs, args, in, cfgPath, stderr)
	if err != nil {
		return err
	}
	v, err := app.Load(src)
	if err != nil {
		return err
	}
	warnings := engine.Check(v)
	for _, w := range warnings {
		fmt.Fprintf(stdout, "%s: %s: %s\n", w.Part, w.Code, w.Message)
	}
	if len(warnings) > 0 {
		return fmt.Errorf("%d problems found", len(warnings))
	}
	fmt.Fprintf(stdout, "%s: %d parts ok\n", *in, v.PartCount())
	return nil
}

func runAirfoil(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("airfoil", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var p airfoil.Params
	fs.Float64VarP(&p.Camber, "camber", "m", 0, "maximum camber, fraction of chord")
	fs.Float64VarP(&p.CamberPos, "camber-pos", "p", 0, "position of maximum camber, fraction of chord")
	fs.Float64VarP(&p.Thickness, "thickness", "t", 0.12, "maximum thickness, fraction of chord")
	fs.Float64VarP(&p.Reflex, "reflex", "r", 0, "trailing edge reflex")
	n := fs.IntP("points", "n", 60, "points per surface")
	out := fs.StringP("out", "o", "", "PNG plot path; without it the loop is printed as x z pairs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loop, err := airfoil.Generate(p, *n)
	if err != nil {
		return err
	}
	if *out == "" {
		for _, q := range loop {
			fmt.Fprintf(stdout, "%.6f %.6f\n", q.X, q.Z)
		}
		return nil
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("m=%g p=%g t=%g r=%g", p.Camber, p.CamberPos, p.Thickness, p.Reflex)
	if err := airfoil.Plot(f, loop, title); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", *out)
	return nil
}
