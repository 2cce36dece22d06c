package hashtable

const multiplier = 65599

// Hash is a polynomial accumulator over the key bytes: h = h*65599 + b. The arithmetic wraps
// around the width of uint. There is no seed, so the same key always results in the same hash.
func Hash(key string) (h uint) {
	for i := 0; i < len(key); i++ {
		h = h*multiplier + uint(key[i])
	}

	return h
}

// Sum returns an index of the bucket the key belongs to among n buckets.
func Sum(key string, n int) int {
	return int(Hash(key) % uint(n))
}
