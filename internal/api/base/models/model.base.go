package basemodels

// PaginateResult wraps a page of items together with paging metadata.
type PaginateResult[T any] struct {
	Items     []T   `json:"items"`
	Page      int64 `json:"page"`
	Limit     int64 `json:"limit"`
	ItemCount int64 `json:"itemCount"`
	Total     int64 `json:"total"`
}

// BatchOutcome reports the per-item result of a batch operation. Batch
// operations always complete their full scan; failures are collected here
// instead of aborting the batch.
type BatchOutcome struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Errors    []BatchError `json:"errors,omitempty"`
}

// BatchError names one failed item inside a batch.
type BatchError struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}
