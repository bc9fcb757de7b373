// Package api defines the messages exchanged with SidePot RPC services.
// Messages travel as JSON; times are Unix milliseconds and money is cents.
package api

type User struct {
	Id          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type Member struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
	IsOwner     bool   `json:"isOwner"`
}

type Group struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerId   string    `json:"ownerId"`
	Members   []*Member `json:"members"`
	CreatedAt int64     `json:"createdAt"`
}

type Invite struct {
	Code      string `json:"code"`
	GroupId   string `json:"groupId"`
	ExpiresAt int64  `json:"expiresAt"`
}

type Outcome struct {
	Id       string `json:"id"`
	Label    string `json:"label"`
	PotCents int64  `json:"potCents"`
}

type Bet struct {
	Id               string     `json:"id"`
	GroupId          string     `json:"groupId"`
	Title            string     `json:"title"`
	Details          string     `json:"details"`
	LockAt           int64      `json:"lockAt"`
	ResolveAt        int64      `json:"resolveAt"`
	Rule             string     `json:"rule"`
	Status           string     `json:"status"`
	Locked           bool       `json:"locked"`
	Outcomes         []*Outcome `json:"outcomes"`
	CreatorId        string     `json:"creatorId"`
	WinningOutcomeId string     `json:"winningOutcomeId,omitempty"`
	TotalPotCents    int64      `json:"totalPotCents"`
	CreatedAt        int64      `json:"createdAt"`
	SettledAt        int64      `json:"settledAt,omitempty"`
}

type Wager struct {
	Id          string `json:"id"`
	BetId       string `json:"betId"`
	OutcomeId   string `json:"outcomeId"`
	UserId      string `json:"userId"`
	AmountCents int64  `json:"amountCents"`
	Seq         int64  `json:"seq"`
	CreatedAt   int64  `json:"createdAt"`
}

type Debt struct {
	Id          string `json:"id"`
	GroupId     string `json:"groupId"`
	BetId       string `json:"betId"`
	DebtorId    string `json:"debtorId"`
	CreditorId  string `json:"creditorId"`
	AmountCents int64  `json:"amountCents"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
	ResolvedAt  int64  `json:"resolvedAt,omitempty"`
}

type ActivityEntry struct {
	Id         string `json:"id"`
	CreatedAt  int64  `json:"createdAt"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	DeltaCents int64  `json:"deltaCents"`
}

type Comment struct {
	Id         string `json:"id"`
	BetId      string `json:"betId"`
	UserId     string `json:"userId"`
	AuthorName string `json:"authorName"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"createdAt"`
}

type MemberBalance struct {
	UserId          string `json:"userId"`
	NetBalanceCents int64  `json:"netBalanceCents"`
	OwedToMeCents   int64  `json:"owedToMeCents"`
	IOweCents       int64  `json:"iOweCents"`
}

// Payment is a suggested transfer that would settle open debts.
type Payment struct {
	FromUserId  string `json:"fromUserId"`
	ToUserId    string `json:"toUserId"`
	AmountCents int64  `json:"amountCents"`
}
