package summary

// Pending wraps a home-summary figure that has no real data source yet.
// ComputePending is true while Value is a fixed stand-in.
type Pending[T any] struct {
	Value          T    `json:"value"`
	ComputePending bool `json:"compute_pending"`
}

func placeholder[T any](v T) Pending[T] { return Pending[T]{Value: v, ComputePending: true} }

func computed[T any](v T) Pending[T] { return Pending[T]{Value: v} }
