package rules

import "fmt"

// PairKey returns the canonical conversation key for two user ids. The key
// is order independent: PairKey(a, b) == PairKey(b, a).
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
