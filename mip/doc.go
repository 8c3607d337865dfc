// Package mip describes mixed-integer linear programs and the solver backends that
// solve them.
//
// A Model is a plain data structure: variables with bounds, type and objective
// coefficient, constraints with a sense and a right-hand side, and solve parameters.
// Building a model never talks to a solver. The finished model is handed to a Solver
// backend, which returns a Solution holding one value per variable in the order the
// variables were added.
//
// The builder keeps the incremental style of classic solver APIs:
//
//	m := mip.NewModel("JenkinsAssign")
//	x := m.AddVar("x", 0, 0, 1, mip.Binary)
//	y := m.AddVar("y", 1, 0, math.Inf(1), mip.Continuous)
//	m.AddConstraint("x_le_y", mip.LessEqual, 0)
//	m.AddTerm(x, 3)
//	m.AddTerm(y, -1)
//	m.SetParams(mip.Params{MIP: true, RelativeGap: 0.002})
//
// Backends live in subpackages (cbc, glpk) and exchange models through the CPLEX LP
// text format produced by WriteLP.
package mip
