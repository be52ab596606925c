package annotate

// MaxAnnotationsPerRequest is the most annotations the checks API accepts in one call.
const MaxAnnotationsPerRequest = 50

// Batch splits items into consecutive chunks of at most size elements.
// A size outside (0, MaxAnnotationsPerRequest] uses MaxAnnotationsPerRequest.
func Batch[T any](items []T, size int) [][]T {
	if size <= 0 || size > MaxAnnotationsPerRequest {
		size = MaxAnnotationsPerRequest
	}
	var batches [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
