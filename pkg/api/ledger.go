package api

type ListDebtsRequest struct {
	GroupId string `json:"groupId"`
}

type ListDebtsResponse struct {
	Debts []*Debt `json:"debts"`
}

type ResolveDebtRequest struct {
	DebtId string `json:"debtId"`
}

type ResolveDebtResponse struct {
	Debt *Debt `json:"debt"`
}

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
	Payments []*Payment       `json:"payments"`
}

type ListActivityRequest struct {
	// UserId defaults to the caller.
	UserId string `json:"userId"`
}

type ListActivityResponse struct {
	Entries []*ActivityEntry `json:"entries"`
}

type GetLockoutRequest struct {
	GroupId string `json:"groupId"`
}

type GetLockoutResponse struct {
	LockedOut bool `json:"lockedOut"`
}
