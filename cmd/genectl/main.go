package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gene/internal/config"
	"gene/pkg/gene"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "size":
		return runSize(ctx, args[1:])
	case "decode":
		return runDecode(ctx, args[1:])
	case "positions":
		return runPositions(ctx, args[1:])
	case "forward":
		return runForward(ctx, args[1:])
	case "validate":
		return runValidate(ctx, args[1:])
	case "distances":
		return runDistances(ctx, args[1:])
	case "archive":
		return runArchive(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "list":
		return runList(ctx, args[1:])
	case "record":
		return runRecord(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// decodeFlags are shared by every command that needs a decode
// configuration. --config takes precedence over the inline flags.
type decodeFlags struct {
	configPath *string
	env        *string
	dims       *string
	scheme     *string
	d          *int
	distance   *string
	arch       *string
}

func addDecodeFlags(fs *flag.FlagSet) decodeFlags {
	return decodeFlags{
		configPath: fs.String("config", "", "experiment config (.json|.yaml); overrides the inline flags"),
		env:        fs.String("env", "", "rewrite input/output sizes for this environment"),
		dims:       fs.String("dims", "", "comma-separated layer dimensions, e.g. 4,16,2"),
		scheme:     fs.String("scheme", "direct", "encoding scheme: direct|gene"),
		d:          fs.Int("d", 0, "position dimensionality for the gene scheme"),
		distance:   fs.String("distance", "L2", "distance function for the gene scheme"),
		arch:       fs.String("arch", "", "network architecture: tanh_linear|relu_tanh_linear|linear"),
	}
}

type resolvedDecode struct {
	cfg  gene.Config
	arch string
}

func (f decodeFlags) resolve() (resolvedDecode, error) {
	if *f.configPath != "" {
		exp, err := config.Load(*f.configPath)
		if err != nil {
			return resolvedDecode{}, err
		}
		if *f.env != "" {
			if exp, err = exp.Fix(*f.env); err != nil {
				return resolvedDecode{}, err
			}
		}
		cfg, err := exp.DecodeConfig()
		if err != nil {
			return resolvedDecode{}, err
		}
		arch := exp.Net.Architecture
		if *f.arch != "" {
			arch = *f.arch
		}
		return resolvedDecode{cfg: cfg, arch: arch}, nil
	}

	if *f.dims == "" {
		return resolvedDecode{}, errors.New("either --config or --dims is required")
	}
	dims, err := parseInts(*f.dims)
	if err != nil {
		return resolvedDecode{}, fmt.Errorf("--dims: %w", err)
	}
	if *f.env != "" {
		size, err := config.EnvSizes(*f.env)
		if err != nil {
			return resolvedDecode{}, err
		}
		if len(dims) >= 2 {
			dims[0] = size.ObservationSpace
			dims[len(dims)-1] = size.ActionSpace
		}
	}
	cfg, err := gene.NewConfig(dims, *f.scheme, *f.d, *f.distance)
	if err != nil {
		return resolvedDecode{}, err
	}
	return resolvedDecode{cfg: cfg, arch: *f.arch}, nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: genectl <%s> [flags]", msg, strings.Join([]string{
		"size", "decode", "positions", "forward", "validate", "distances",
		"archive", "show", "list", "record", "history",
	}, "|"))
}
