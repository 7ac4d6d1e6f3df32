package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseExamples parses the examples format: a leading
// "Return <total_memory>" line, then one
// "<id> <op_name> <num_inputs> [<id>...] <run_mem> <output_mem> <time_cost>"
// line per node, with inputs referring to earlier ids by numeric id lookup.
// The node's name is its op_name.
func ParseExamples(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	var result Result
	haveTotal := false
	idToName := make(map[string]string)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !haveTotal {
			fields := strings.Fields(line)
			if len(fields) != 2 || fields[0] != "Return" {
				return nil, &SyntaxError{Line: lineNo, Msg: fmt.Sprintf("expected 'Return <total_memory>', got %q", line)}
			}
			v, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil || v <= 0 {
				return nil, &SyntaxError{Line: lineNo, Msg: "total_memory must be a positive integer"}
			}
			result.TotalMemory = v
			haveTotal = true
			continue
		}

		spec, id, err := parseExampleNodeLine(line, idToName)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Msg: err.Error()}
		}
		if _, dup := idToName[id]; dup {
			return nil, &SyntaxError{Line: lineNo, Msg: fmt.Sprintf("duplicate node id %q", id)}
		}
		idToName[id] = spec.Name
		result.Specs = append(result.Specs, spec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: reading input: %w", err)
	}
	if !haveTotal {
		return nil, &SyntaxError{Line: lineNo, Msg: "missing 'Return <total_memory>' line"}
	}
	return &result, nil
}

func parseExampleNodeLine(line string, idToName map[string]string) (NodeSpec, string, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return NodeSpec{}, "", fmt.Errorf("malformed node line %q", line)
	}

	id := fields[0]
	opName := fields[1]
	numInputs, err := strconv.Atoi(fields[2])
	if err != nil || numInputs < 0 {
		return NodeSpec{}, "", fmt.Errorf("invalid num_inputs %q", fields[2])
	}

	wantLen := 3 + numInputs + 3
	if len(fields) != wantLen {
		return NodeSpec{}, "", fmt.Errorf("expected %d fields for %d inputs, got %d", wantLen, numInputs, len(fields))
	}

	inputs := make([]string, 0, numInputs)
	for _, iid := range fields[3 : 3+numInputs] {
		name, ok := idToName[iid]
		if !ok {
			return NodeSpec{}, "", fmt.Errorf("input id %q has no prior definition", iid)
		}
		inputs = append(inputs, name)
	}

	runMem, err := parseNonNegative(fields[3+numInputs])
	if err != nil {
		return NodeSpec{}, "", fmt.Errorf("run_mem: %w", err)
	}
	outputMem, err := parseNonNegative(fields[3+numInputs+1])
	if err != nil {
		return NodeSpec{}, "", fmt.Errorf("output_mem: %w", err)
	}
	timeCost, err := parseNonNegative(fields[3+numInputs+2])
	if err != nil {
		return NodeSpec{}, "", fmt.Errorf("time_cost: %w", err)
	}

	return NodeSpec{
		Name:      opName,
		RunMem:    runMem,
		OutputMem: outputMem,
		TimeCost:  timeCost,
		Inputs:    inputs,
	}, id, nil
}
