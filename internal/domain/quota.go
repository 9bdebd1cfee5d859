package domain

import "time"

const (
	DefaultDailyQuota        = 100
	DefaultRewardPerTransfer = 50
	DefaultPacing            = 5 * time.Second
	DefaultAccountBudget     = 5 * time.Hour
)

type Quota struct {
	Daily  int
	Reward int
}

func DefaultQuota() Quota {
	return Quota{Daily: DefaultDailyQuota, Reward: DefaultRewardPerTransfer}
}

func (q Quota) Remaining(done int) int {
	if done >= q.Daily {
		return 0
	}
	if done < 0 {
		return q.Daily
	}

	return q.Daily - done
}

func (q Quota) Reached(done int) bool {
	return done >= q.Daily
}
