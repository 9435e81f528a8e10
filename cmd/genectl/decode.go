package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"gene/internal/config"
	"gene/pkg/gene"

	"github.com/dustin/go-humanize"
)

func runSize(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("size", flag.ContinueOnError)
	decode := addDecodeFlags(fs)
	jsonOut := fs.Bool("json", false, "emit size as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := decode.resolve()
	if err != nil {
		return err
	}
	size, err := resolved.cfg.GenomeSize()
	if err != nil {
		return err
	}

	if *jsonOut {
		return writeJSON(struct {
			Dims   []int  `json:"layer_dimensions"`
			Scheme string `json:"scheme"`
			D      int    `json:"d"`
			Genes  int    `json:"genes"`
			Bytes  int    `json:"bytes"`
		}{
			Dims:   resolved.cfg.Topology.Dims(),
			Scheme: resolved.cfg.Scheme.String(),
			D:      resolved.cfg.D,
			Genes:  size,
			Bytes:  size * 8,
		})
	}
	fmt.Fprintf(stdout, "dims=%v scheme=%s d=%d genes=%s size=%s\n",
		resolved.cfg.Topology.Dims(),
		resolved.cfg.Scheme,
		resolved.cfg.D,
		humanize.Comma(int64(size)),
		humanize.Bytes(uint64(size)*8),
	)
	return nil
}

func runDecode(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	decode := addDecodeFlags(fs)
	genomePath := fs.String("genome", "", "genome file (JSON array or separated numbers, - for stdin)")
	values := fs.String("values", "", "inline comma-separated genome")
	jsonOut := fs.Bool("json", false, "emit decoded layers as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := decode.resolve()
	if err != nil {
		return err
	}
	genome, err := readGenome(*genomePath, *values)
	if err != nil {
		return err
	}
	decoder, err := gene.NewDecoderFromConfig(resolved.cfg)
	if err != nil {
		return err
	}
	params, err := decoder.Decode(genome)
	if err != nil {
		return err
	}

	if *jsonOut {
		return writeJSON(viewParams(params))
	}
	for _, shape := range params.Shapes() {
		fmt.Fprintf(stdout, "in=%d out=%d bias=%d\n", shape.In, shape.Out, shape.Bias)
	}
	fmt.Fprintf(stdout, "parameters=%s\n", humanize.Comma(int64(params.NumParameters())))
	return nil
}

func runPositions(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("positions", flag.ContinueOnError)
	dims := fs.String("dims", "", "comma-separated layer dimensions")
	d := fs.Int("d", 0, "position dimensionality")
	genomePath := fs.String("genome", "", "genome file (JSON array or separated numbers, - for stdin)")
	values := fs.String("values", "", "inline comma-separated genome")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dims == "" {
		return errors.New("positions requires --dims")
	}

	layerDims, err := parseInts(*dims)
	if err != nil {
		return fmt.Errorf("--dims: %w", err)
	}
	genome, err := readGenome(*genomePath, *values)
	if err != nil {
		return err
	}
	positions, err := gene.Positions(genome, layerDims, *d)
	if err != nil {
		return err
	}

	w := csv.NewWriter(stdout)
	header := []string{"neuron", "layer"}
	for i := 0; i < *d; i++ {
		header = append(header, "x"+strconv.Itoa(i))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range positions {
		row := []string{strconv.Itoa(p.Index), strconv.Itoa(p.Layer)}
		for _, v := range p.Position {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runForward(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("forward", flag.ContinueOnError)
	decode := addDecodeFlags(fs)
	genomePath := fs.String("genome", "", "genome file (JSON array or separated numbers, - for stdin)")
	values := fs.String("values", "", "inline comma-separated genome")
	input := fs.String("input", "", "comma-separated observation")
	jsonOut := fs.Bool("json", false, "emit output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("forward requires --input")
	}

	resolved, err := decode.resolve()
	if err != nil {
		return err
	}
	genome, err := readGenome(*genomePath, *values)
	if err != nil {
		return err
	}
	observation, err := parseFloats(*input)
	if err != nil {
		return fmt.Errorf("--input: %w", err)
	}
	decoder, err := gene.NewDecoderFromConfig(resolved.cfg)
	if err != nil {
		return err
	}
	params, err := decoder.Decode(genome)
	if err != nil {
		return err
	}
	output, err := gene.Forward(params, resolved.arch, observation)
	if err != nil {
		return err
	}

	if *jsonOut {
		return writeJSON(output)
	}
	for i, v := range output {
		fmt.Fprintf(stdout, "output[%d]=%g\n", i, v)
	}
	return nil
}

func runValidate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	configPath := fs.String("config", "", "experiment config (.json|.yaml)")
	env := fs.String("env", "", "rewrite input/output sizes for this environment")
	out := fs.String("write", "", "write the (fixed) config to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errors.New("validate requires --config")
	}

	exp, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *env != "" {
		if exp, err = exp.Fix(*env); err != nil {
			return err
		}
	}
	cfg, err := exp.DecodeConfig()
	if err != nil {
		return err
	}
	if _, err := exp.PolicyArchitecture(); err != nil {
		return err
	}
	size, err := cfg.GenomeSize()
	if err != nil {
		return err
	}
	if *out != "" {
		if err := exp.Save(*out); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "ok env=%s dims=%v scheme=%s d=%d distance=%s genes=%s\n",
		exp.Task.Environment,
		cfg.Topology.Dims(),
		cfg.Scheme,
		cfg.D,
		cfg.DistanceName,
		humanize.Comma(int64(size)),
	)
	return nil
}

func runDistances(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("distances", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range gene.Distances() {
		fmt.Fprintln(stdout, name)
	}
	return nil
}
