// Package progress holds the JSON shapes shared by the progress dashboard
// server and its client.
package progress

import "github.com/bnema/pioneer-tx-cli/internal/domain"

const (
	PathAccounts = "/user/list"
	PathCount    = "/user/tx-count"
	PathData     = "/data"
)

type AccountsRequest struct {
	Users []string `json:"users"`
}

type CountRequest struct {
	User    string `json:"user"`
	TxCount int    `json:"txCount"`
}

type DataResponse struct {
	UserList     []string       `json:"userList"`
	UserTxCounts map[string]int `json:"userTxCounts"`
}

func NewDataResponse(snapshot domain.ProgressSnapshot) DataResponse {
	resp := DataResponse{UserList: snapshot.Accounts, UserTxCounts: snapshot.Counts}
	if resp.UserList == nil {
		resp.UserList = []string{}
	}
	if resp.UserTxCounts == nil {
		resp.UserTxCounts = map[string]int{}
	}
	return resp
}

func (r DataResponse) Snapshot() domain.ProgressSnapshot {
	counts := make(map[string]int, len(r.UserTxCounts))
	for account, count := range r.UserTxCounts {
		counts[account] = count
	}
	return domain.ProgressSnapshot{Accounts: append([]string{}, r.UserList...), Counts: counts}
}
