package service

import (
	"time"

	"github.com/mmynk/sidepot/internal/calculator"
	"github.com/mmynk/sidepot/internal/models"
	pb "github.com/mmynk/sidepot/pkg/api"
)

func userToAPI(u *models.User) *pb.User {
	return &pb.User{
		Id:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// groupToAPI lists members in join order. names maps user IDs to display
// names; members without an entry fall back to their ID.
func groupToAPI(g *models.Group, names map[string]*models.User) *pb.Group {
	members := make([]*pb.Member, len(g.MemberIDs))
	for i, id := range g.MemberIDs {
		name := id
		if u, ok := names[id]; ok {
			name = u.DisplayName
		}
		members[i] = &pb.Member{
			UserId:      id,
			DisplayName: name,
			IsOwner:     id == g.OwnerID,
		}
	}
	return &pb.Group{
		Id:        g.ID,
		Name:      g.Name,
		OwnerId:   g.OwnerID,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func inviteToAPI(i *models.Invite) *pb.Invite {
	return &pb.Invite{
		Code:      i.Code,
		GroupId:   i.GroupID,
		ExpiresAt: i.ExpiresAt,
	}
}

func betToAPI(b *models.Bet, now time.Time) *pb.Bet {
	outcomes := make([]*pb.Outcome, len(b.Outcomes))
	for i, o := range b.Outcomes {
		outcomes[i] = &pb.Outcome{
			Id:       o.ID,
			Label:    o.Label,
			PotCents: o.Pot.Cents(),
		}
	}
	return &pb.Bet{
		Id:               b.ID,
		GroupId:          b.GroupID,
		Title:            b.Title,
		Details:          b.Details,
		LockAt:           b.LockAt,
		ResolveAt:        b.ResolveAt,
		Rule:             string(b.Rule),
		Status:           string(b.Status),
		Locked:           b.IsLocked(now),
		Outcomes:         outcomes,
		CreatorId:        b.CreatorID,
		WinningOutcomeId: b.WinningOutcomeID,
		TotalPotCents:    b.TotalPot().Cents(),
		CreatedAt:        b.CreatedAt,
		SettledAt:        b.SettledAt,
	}
}

func wagerToAPI(w *models.Wager) *pb.Wager {
	return &pb.Wager{
		Id:          w.ID,
		BetId:       w.BetID,
		OutcomeId:   w.OutcomeID,
		UserId:      w.UserID,
		AmountCents: w.Amount.Cents(),
		Seq:         w.Seq,
		CreatedAt:   w.CreatedAt,
	}
}

func debtToAPI(d *models.Debt) *pb.Debt {
	return &pb.Debt{
		Id:          d.ID,
		GroupId:     d.GroupID,
		BetId:       d.BetID,
		DebtorId:    d.DebtorID,
		CreditorId:  d.CreditorID,
		AmountCents: d.Amount.Cents(),
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
		ResolvedAt:  d.ResolvedAt,
	}
}

func activityToAPI(e *models.ActivityEntry) *pb.ActivityEntry {
	return &pb.ActivityEntry{
		Id:         e.ID,
		CreatedAt:  e.CreatedAt,
		Title:      e.Title,
		Detail:     e.Detail,
		DeltaCents: e.Delta.Cents(),
	}
}

func commentToAPI(c *models.Comment) *pb.Comment {
	return &pb.Comment{
		Id:         c.ID,
		BetId:      c.BetID,
		UserId:     c.UserID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

func balanceToAPI(b calculator.MemberBalance) *pb.MemberBalance {
	return &pb.MemberBalance{
		UserId:          b.UserID,
		NetBalanceCents: b.NetBalance.Cents(),
		OwedToMeCents:   b.OwedToMe.Cents(),
		IOweCents:       b.IOwe.Cents(),
	}
}

func paymentToAPI(e calculator.DebtEdge) *pb.Payment {
	return &pb.Payment{
		FromUserId:  e.From,
		ToUserId:    e.To,
		AmountCents: e.Amount.Cents(),
	}
}
