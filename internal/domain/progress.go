package domain

type ProgressSnapshot struct {
	Accounts []string
	Counts   map[string]int
}

func NewProgressSnapshot(accounts []string) ProgressSnapshot {
	counts := make(map[string]int, len(accounts))
	for _, account := range accounts {
		counts[account] = 0
	}

	return ProgressSnapshot{Accounts: append([]string(nil), accounts...), Counts: counts}
}

func (s ProgressSnapshot) Count(key string) int {
	return s.Counts[key]
}
