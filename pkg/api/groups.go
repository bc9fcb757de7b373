package api

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type CreateInviteRequest struct {
	GroupId string `json:"groupId"`
}

type CreateInviteResponse struct {
	Invite *Invite `json:"invite"`
}

type AcceptInviteRequest struct {
	Code string `json:"code"`
}

type AcceptInviteResponse struct {
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupId string `json:"groupId"`
	UserId  string `json:"userId"`
}

type RemoveMemberResponse struct{}
