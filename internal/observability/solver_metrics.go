package observability

// Solver labels.
const (
	SolverIntercept     = "ray_intercept"
	SolverNearPoint     = "point_near_point"
	SolverLineNearPoint = "line_near_point"
	SolverLimb          = "limb"
	SolverFOV           = "fov"
)

// Solvers lists every solver label.
func Solvers() []string {
	return []string{SolverIntercept, SolverNearPoint, SolverLineNearPoint, SolverLimb, SolverFOV}
}

// Solve outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// SolveRecorder receives one observation per solver invocation.
type SolveRecorder interface {
	ObserveSolve(solver, outcome string, iterations int)
}

// ObserveSolve counts a solve and, for iterative solvers, records the number
// of iterations it took. Negative iterations are not recorded.
func (c *GeometryCollector) ObserveSolve(solver, outcome string, iterations int) {
	if c == nil {
		return
	}
	c.Solves.WithLabelValues(solver, outcome).Inc()
	if iterations >= 0 {
		c.SolverIterations.WithLabelValues(solver).Observe(float64(iterations))
	}
}

// NopSolveRecorder discards observations.
type NopSolveRecorder struct{}

func (NopSolveRecorder) ObserveSolve(string, string, int) {}
