// Package health provides readiness checks for the warden service's
// dependencies.
package health

import "context"

// Check represents a health check.
type Check interface {
	// Name returns the name of the health check.
	Name() string
	// Check performs the health check and returns an error if unhealthy.
	Check(ctx context.Context) error
}

// Status represents the status of a health check.
type Status string

const (
	// StatusHealthy indicates the component is healthy.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the component is unhealthy.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the component is working but degraded.
	StatusDegraded Status = "degraded"
)

// Result represents the result of a health check.
type Result struct {
	Name    string            `json:"name"`
	Status  Status            `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// detailedCheck is implemented by checks that can report more than a
// binary outcome.
type detailedCheck interface {
	CheckDetailed(ctx context.Context) Result
}

// RunAll executes every check and collects the results in order.
func RunAll(ctx context.Context, checks ...Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if dc, ok := check.(detailedCheck); ok {
			results = append(results, dc.CheckDetailed(ctx))
			continue
		}
		result := Result{Name: check.Name(), Status: StatusHealthy}
		if err := check.Check(ctx); err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		}
		results = append(results, result)
	}
	return results
}

// Healthy reports whether no result is unhealthy. Degraded results still
// count as ready.
func Healthy(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusUnhealthy {
			return false
		}
	}
	return true
}
