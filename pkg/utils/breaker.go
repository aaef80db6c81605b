package utils

import "github.com/sony/gobreaker"

// ExecuteWithBreaker is a typed wrapper over gobreaker's
// interface{}-based Execute.
func ExecuteWithBreaker[T any](cb *gobreaker.CircuitBreaker, op func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return op()
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return res.(T), nil
}
