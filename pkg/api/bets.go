package api

type CreateBetRequest struct {
	GroupId   string   `json:"groupId"`
	Title     string   `json:"title"`
	Details   string   `json:"details"`
	LockAt    int64    `json:"lockAt"`
	ResolveAt int64    `json:"resolveAt"`
	Rule      string   `json:"rule"`
	Outcomes  []string `json:"outcomes"`
}

type CreateBetResponse struct {
	Bet *Bet `json:"bet"`
}

type GetBetRequest struct {
	BetId string `json:"betId"`
}

type GetBetResponse struct {
	Bet    *Bet     `json:"bet"`
	Wagers []*Wager `json:"wagers"`
}

type ListBetsRequest struct {
	GroupId string `json:"groupId"`
}

type ListBetsResponse struct {
	Bets []*Bet `json:"bets"`
}

type PlaceWagerRequest struct {
	BetId     string `json:"betId"`
	OutcomeId string `json:"outcomeId"`
	// Dollars is clamped to the allowed stake range.
	Dollars int64 `json:"dollars"`
}

type PlaceWagerResponse struct {
	Wager *Wager `json:"wager"`
}

type ResolveBetRequest struct {
	BetId            string `json:"betId"`
	WinningOutcomeId string `json:"winningOutcomeId"`
}

type ResolveBetResponse struct {
	Bet *Bet `json:"bet"`
}

type ToggleDisputeRequest struct {
	BetId string `json:"betId"`
}

type ToggleDisputeResponse struct {
	Bet *Bet `json:"bet"`
}

type AddCommentRequest struct {
	BetId string `json:"betId"`
	Body  string `json:"body"`
}

type AddCommentResponse struct {
	Comment *Comment `json:"comment"`
}

type ListCommentsRequest struct {
	BetId string `json:"betId"`
}

type ListCommentsResponse struct {
	Comments []*Comment `json:"comments"`
}
