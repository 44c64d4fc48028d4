package pool

import "sync"

// stringSlicePool provides pooled []string row buffers.
var stringSlicePool = sync.Pool{
	New: func() any {
		s := make([]string, 0, 16)
		return &s
	},
}

// AcquireStringSlice gets an empty []string from the pool.
func AcquireStringSlice() *[]string {
	s := stringSlicePool.Get().(*[]string)
	*s = (*s)[:0]
	return s
}

// ReleaseStringSlice returns a slice to the pool.
func ReleaseStringSlice(s *[]string) {
	if s == nil {
		return
	}
	if cap(*s) <= 1024 {
		stringSlicePool.Put(s)
	}
}
