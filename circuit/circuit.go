package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	paramGateRegex  = regexp.MustCompile(`^(\w+)\(([-+0-9.eE]+)\)\s+q\[(\d+)\];?$`)
	twoQubitRegex   = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	qregRegex       = regexp.MustCompile(`qreg\s+q\[(\d+)\]`)
)

// Gate is a single operation in a circuit.
type Gate struct {
	Type    string
	Target  int
	Control int // -1 if not a controlled gate
	Theta   float64
}

// Circuit is an ordered list of gates over a fixed qubit register. It is the
// opaque circuit description handed to both the simulator and the
// reconstructor.
type Circuit struct {
	NumQubits int
	Gates     []Gate
}

func New(numQubits int) *Circuit {
	return &Circuit{NumQubits: numQubits}
}

// AddGate appends a single-qubit gate.
func (c *Circuit) AddGate(gateType string, target int) {
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: -1,
	})
}

// AddRotation appends a parameterized single-qubit gate.
func (c *Circuit) AddRotation(gateType string, target int, theta float64) {
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: -1,
		Theta:   theta,
	})
}

// AddControlledGate appends a two-qubit gate.
func (c *Circuit) AddControlledGate(gateType string, control, target int) {
	c.Gates = append(c.Gates, Gate{
		Type:    gateType,
		Target:  target,
		Control: control,
	})
}

// Qubits lists the qubit indices of the register in ascending order.
func (c *Circuit) Qubits() []int {
	qubits := make([]int, c.NumQubits)
	for i := range qubits {
		qubits[i] = i
	}
	return qubits
}

func (c *Circuit) Clone() *Circuit {
	gates := make([]Gate, len(c.Gates))
	copy(gates, c.Gates)
	return &Circuit{NumQubits: c.NumQubits, Gates: gates}
}

// ToQASM generates OpenQASM 2.0 output from the circuit.
func (c *Circuit) ToQASM() string {
	maxQubit := -1
	for _, gate := range c.Gates {
		if gate.Target > maxQubit {
			maxQubit = gate.Target
		}
		if gate.Control > maxQubit {
			maxQubit = gate.Control
		}
	}
	numQubits := c.NumQubits
	if maxQubit+1 > numQubits {
		numQubits = maxQubit + 1
	}
	if numQubits < 1 {
		numQubits = 1
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", numQubits)

	for _, gate := range c.Gates {
		switch {
		case gate.Control >= 0:
			fmt.Fprintf(&sb, "%s q[%d], q[%d];\n",
				strings.ToLower(gate.Type), gate.Control, gate.Target)
		case isRotation(gate.Type):
			fmt.Fprintf(&sb, "%s(%g) q[%d];\n",
				strings.ToLower(gate.Type), gate.Theta, gate.Target)
		default:
			fmt.Fprintf(&sb, "%s q[%d];\n", strings.ToLower(gate.Type), gate.Target)
		}
	}

	return sb.String()
}

func isRotation(gateType string) bool {
	switch strings.ToLower(gateType) {
	case "rx", "ry", "rz":
		return true
	}
	return false
}

// ParseQASM parses OpenQASM 2.0 text and rebuilds the circuit from it.
// Only the gate set the simulator understands is accepted.
func ParseQASM(qasm string) (*Circuit, error) {
	c := &Circuit{}
	for _, rawLine := range strings.Split(qasm, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "creg") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			if matches := qregRegex.FindStringSubmatch(line); len(matches) > 1 {
				n, _ := strconv.Atoi(matches[1])
				c.NumQubits = n
			}
			continue
		}

		// Two-qubit gates: cx, cz, swap
		if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToLower(matches[1])
			control, _ := strconv.Atoi(matches[2])
			target, _ := strconv.Atoi(matches[3])
			switch gateType {
			case "cx", "cz", "swap":
				c.AddControlledGate(gateType, control, target)
			default:
				return nil, fmt.Errorf("unsupported two-qubit gate: %s", gateType)
			}
			continue
		}

		// Parameterized single-qubit gate
		if matches := paramGateRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToLower(matches[1])
			theta, err := strconv.ParseFloat(matches[2], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid gate parameter in %q: %w", line, err)
			}
			if !isRotation(gateType) {
				return nil, fmt.Errorf("unsupported parameterized gate: %s", gateType)
			}
			target, _ := strconv.Atoi(matches[3])
			c.AddRotation(gateType, target, theta)
			continue
		}

		// Single-qubit gate
		if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToLower(matches[1])
			target, _ := strconv.Atoi(matches[2])
			switch gateType {
			case "h", "x", "y", "z", "s", "sdg", "t", "tdg":
				c.AddGate(gateType, target)
			default:
				return nil, fmt.Errorf("unsupported gate: %s", gateType)
			}
			continue
		}

		return nil, fmt.Errorf("failed to parse line: %q", line)
	}
	if c.NumQubits == 0 {
		return nil, fmt.Errorf("no qreg declaration found")
	}
	for _, g := range c.Gates {
		if g.Target >= c.NumQubits || g.Control >= c.NumQubits {
			return nil, fmt.Errorf("gate %s references qubit outside qreg[%d]",
				g.Type, c.NumQubits)
		}
	}
	return c, nil
}
