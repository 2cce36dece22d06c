package hashtable

import (
	"github.com/indigo-web/symtable/errors"
)

// DefaultStages are primes near powers of two, each roughly doubling the previous one.
var DefaultStages = []int{509, 1021, 2039, 4093, 8191, 16381, 32749, 65521}

// Stages is an ascending sequence of bucket counts. The table starts with the first one and
// advances towards the next one every time the number of bindings exceeds the current count.
// Having reached the last one, the table stops growing, so chains just get longer.
type Stages []int

func (s Stages) validate() error {
	if len(s) == 0 {
		return errors.ErrStages
	}

	prev := 0
	for _, n := range s {
		if n <= prev {
			return errors.Wrapf(errors.ErrStages, "got %v", []int(s))
		}

		prev = n
	}

	return nil
}

// due reports, whether a table holding length bindings at the given stage must grow.
func (s Stages) due(stage, length int) bool {
	return stage+1 < len(s) && length > s[stage]
}
