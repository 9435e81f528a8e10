package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gene/pkg/gene"

	"github.com/mattn/go-isatty"
)

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// writeJSON indents only for interactive terminals so piped output stays
// one document per line.
func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	if isTerminal(stdout) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type layerView struct {
	Name    string      `json:"name"`
	In      int         `json:"in"`
	Out     int         `json:"out"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

func viewParams(params gene.Params) []layerView {
	out := make([]layerView, len(params.Layers))
	for i, layer := range params.Layers {
		rows, cols := layer.Weights.Dims()
		weights := make([][]float64, rows)
		for r := range weights {
			weights[r] = make([]float64, cols)
			for c := range weights[r] {
				weights[r][c] = layer.Weights.At(r, c)
			}
		}
		out[i] = layerView{
			Name:    layer.Name,
			In:      rows,
			Out:     cols,
			Weights: weights,
			Bias:    append([]float64(nil), layer.Bias...),
		}
	}
	return out
}

// readGenome takes inline --values first, then --genome (a JSON array or
// comma/whitespace separated numbers; "-" reads stdin).
func readGenome(path, values string) ([]float64, error) {
	if values != "" {
		return parseFloats(values)
	}
	if path == "" {
		return nil, errors.New("either --genome or --values is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "[") {
		var genome []float64
		if err := json.Unmarshal([]byte(text), &genome); err != nil {
			return nil, fmt.Errorf("parse genome %s: %w", path, err)
		}
		return genome, nil
	}
	return parseFloats(text)
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
}

func parseFloats(s string) ([]float64, error) {
	fields := splitList(s)
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	fields := splitList(s)
	out := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
