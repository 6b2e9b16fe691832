package aggregate

import (
	"bytes"
	"encoding/json"
)

// Diff names the views that differ between a and b, compared by their JSON
// encoding. An empty result means the views are identical.
func Diff(a, b Views) []string {
	var diffs []string
	pairs := []struct {
		name string
		a, b any
	}{
		{"monthlySpending", a.MonthlySpending, b.MonthlySpending},
		{"balanceHistory", a.BalanceHistory, b.BalanceHistory},
		{"recentActivity", a.RecentActivity, b.RecentActivity},
	}
	for _, p := range pairs {
		ja, errA := json.Marshal(p.a)
		jb, errB := json.Marshal(p.b)
		if errA != nil || errB != nil || !bytes.Equal(ja, jb) {
			diffs = append(diffs, p.name)
		}
	}
	return diffs
}
