package mip

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// termsPerLine keeps LP rows readable and well under reader line limits.
const termsPerLine = 8

// WriteLP writes the model in CPLEX LP format.
//
// Every variable appears in the objective (with a zero coefficient if needed) in
// AddVar order, so backends that number columns by first appearance keep the model's
// variable order. Integrality sections are emitted only when Params.MIP is set.
//
// Parameters:
//   - w: Destination
//   - m: Model to write; validated first
//
// Returns:
//   - error: Validation or write error
func WriteLP(w io.Writer, m *Model) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ Model %s\n", m.Name)
	if m.Params.Maximize {
		fmt.Fprintln(bw, "Maximize")
	} else {
		fmt.Fprintln(bw, "Minimize")
	}

	fmt.Fprint(bw, " obj:")
	for idx, v := range m.Vars {
		if idx > 0 && idx%termsPerLine == 0 {
			fmt.Fprint(bw, "\n     ")
		}
		writeTerm(bw, v.Obj, v.Name)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for _, c := range m.Constraints {
		fmt.Fprintf(bw, " %s:", c.Name)
		if len(c.Terms) == 0 && len(m.Vars) > 0 {
			// LP rows need at least one term.
			writeTerm(bw, 0, m.Vars[0].Name)
		}
		for idx, term := range c.Terms {
			if idx > 0 && idx%termsPerLine == 0 {
				fmt.Fprint(bw, "\n   ")
			}
			writeTerm(bw, term.Coef, m.Vars[term.Var].Name)
		}
		fmt.Fprintf(bw, " %s %s\n", c.Sense, formatNumber(c.RHS))
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range m.Vars {
		writeBounds(bw, v, m.Params.MIP)
	}

	if m.Params.MIP {
		writeSection(bw, "Binaries", m.Vars, Binary)
		writeSection(bw, "Generals", m.Vars, Integer)
	}

	fmt.Fprintln(bw, "End")

	return bw.Flush()
}

func writeTerm(w io.Writer, coef float64, name string) {
	sign := "+"
	if coef < 0 {
		sign = "-"
	}
	fmt.Fprintf(w, " %s %s %s", sign, formatNumber(math.Abs(coef)), name)
}

func writeBounds(w io.Writer, v Var, mip bool) {
	lower, upper := v.Lower, v.Upper
	if v.Type == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
		if mip {
			// The Binaries section implies [0, 1].
			return
		}
	}

	switch {
	case math.IsInf(lower, -1) && math.IsInf(upper, 1):
		fmt.Fprintf(w, " %s free\n", v.Name)
	case lower == 0 && math.IsInf(upper, 1):
		// LP default bounds.
	case math.IsInf(upper, 1):
		fmt.Fprintf(w, " %s >= %s\n", v.Name, formatNumber(lower))
	default:
		fmt.Fprintf(w, " %s <= %s <= %s\n", formatNumber(lower), v.Name, formatNumber(upper))
	}
}

func writeSection(w io.Writer, title string, vars []Var, typ VarType) {
	header := false
	for _, v := range vars {
		if v.Type != typ {
			continue
		}
		if !header {
			fmt.Fprintln(w, title)
			header = true
		}
		fmt.Fprintf(w, " %s\n", v.Name)
	}
}

func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
