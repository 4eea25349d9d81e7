package helpers

// SafeLastN returns the last n elements of a slice, or the whole
// slice when it is shorter than n.
func SafeLastN[T any](slice []T, n int) []T {
	if len(slice) > n {
		return slice[len(slice)-n:]
	}
	return slice
}
