package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseSimple parses the simple format: a leading
// "total_memory: <int>" line (blank lines and "#" comments skipped), then
// one "node <name> <run_mem> <output_mem> <time_cost> inputs=<csv|->" line
// per node.
func ParseSimple(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	var result Result
	haveTotal := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !haveTotal {
			const prefix = "total_memory:"
			if !strings.HasPrefix(line, prefix) {
				return nil, &SyntaxError{Line: lineNo, Msg: fmt.Sprintf("expected %q, got %q", prefix, line)}
			}
			v, err := strconv.ParseInt(strings.TrimSpace(line[len(prefix):]), 10, 64)
			if err != nil || v <= 0 {
				return nil, &SyntaxError{Line: lineNo, Msg: "total_memory must be a positive integer"}
			}
			result.TotalMemory = v
			haveTotal = true
			continue
		}

		spec, err := parseSimpleNodeLine(line)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Msg: err.Error()}
		}
		result.Specs = append(result.Specs, spec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: reading input: %w", err)
	}
	if !haveTotal {
		return nil, &SyntaxError{Line: lineNo, Msg: "missing total_memory line"}
	}
	return &result, nil
}

func parseSimpleNodeLine(line string) (NodeSpec, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 || fields[0] != "node" {
		return NodeSpec{}, fmt.Errorf("expected 'node <name> <run_mem> <output_mem> <time_cost> inputs=<csv|->', got %q", line)
	}

	runMem, err := parseNonNegative(fields[2])
	if err != nil {
		return NodeSpec{}, fmt.Errorf("run_mem: %w", err)
	}
	outputMem, err := parseNonNegative(fields[3])
	if err != nil {
		return NodeSpec{}, fmt.Errorf("output_mem: %w", err)
	}
	timeCost, err := parseNonNegative(fields[4])
	if err != nil {
		return NodeSpec{}, fmt.Errorf("time_cost: %w", err)
	}

	const inputsPrefix = "inputs="
	if !strings.HasPrefix(fields[5], inputsPrefix) {
		return NodeSpec{}, fmt.Errorf("expected 'inputs=<csv|->', got %q", fields[5])
	}
	inputsField := fields[5][len(inputsPrefix):]
	var inputs []string
	if inputsField != "-" && inputsField != "" {
		inputs = strings.Split(inputsField, ",")
	}

	return NodeSpec{
		Name:      fields[1],
		RunMem:    runMem,
		OutputMem: outputMem,
		TimeCost:  timeCost,
		Inputs:    inputs,
	}, nil
}
