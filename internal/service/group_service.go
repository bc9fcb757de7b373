package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/sidepot/internal/groups"
	"github.com/mmynk/sidepot/internal/middleware"
	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/storage"
	pb "github.com/mmynk/sidepot/pkg/api"
	"github.com/mmynk/sidepot/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	dir    *groups.Directory
	users  storage.UserStore
	logger *slog.Logger
}

// NewGroupService creates a new GroupService over the group directory.
func NewGroupService(dir *groups.Directory, users storage.UserStore, logger *slog.Logger) *GroupService {
	return &GroupService{dir: dir, users: users, logger: logger}
}

// CreateGroup creates a group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.CreateGroupResponse], error) {
	actor := middleware.GetUserID(ctx)
	s.logger.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", actor)

	group, err := s.dir.CreateGroup(ctx, actor, req.Msg.Name)
	if err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	resp, err := s.withNames(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.CreateGroupResponse{Group: resp}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GetGroupResponse], error) {
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, err := s.dir.GetGroup(ctx, middleware.GetUserID(ctx), req.Msg.GroupId)
	if err != nil {
		s.logger.Warn("GetGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	resp, err := s.withNames(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.GetGroupResponse{Group: resp}), nil
}

// ListGroups retrieves the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[pb.ListGroupsRequest]) (*connect.Response[pb.ListGroupsResponse], error) {
	list, err := s.dir.ListGroups(ctx, middleware.GetUserID(ctx))
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	names, err := s.lookupNames(ctx, list...)
	if err != nil {
		return nil, err
	}
	out := make([]*pb.Group, len(list))
	for i, g := range list {
		out[i] = groupToAPI(g, names)
	}

	s.logger.Info("ListGroups successful", "count", len(list))
	return connect.NewResponse(&pb.ListGroupsResponse{Groups: out}), nil
}

// CreateInvite issues an invite code. Owner only.
func (s *GroupService) CreateInvite(ctx context.Context, req *connect.Request[pb.CreateInviteRequest]) (*connect.Response[pb.CreateInviteResponse], error) {
	s.logger.Info("CreateInvite request received", "group_id", req.Msg.GroupId)

	invite, err := s.dir.CreateInvite(ctx, middleware.GetUserID(ctx), req.Msg.GroupId)
	if err != nil {
		s.logger.Warn("CreateInvite failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.CreateInviteResponse{Invite: inviteToAPI(invite)}), nil
}

// AcceptInvite joins the caller to the invite's group.
func (s *GroupService) AcceptInvite(ctx context.Context, req *connect.Request[pb.AcceptInviteRequest]) (*connect.Response[pb.AcceptInviteResponse], error) {
	group, err := s.dir.AcceptInvite(ctx, middleware.GetUserID(ctx), req.Msg.Code)
	if err != nil {
		s.logger.Warn("AcceptInvite failed", "error", err)
		return nil, toConnectError(err)
	}

	resp, err := s.withNames(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.AcceptInviteResponse{Group: resp}), nil
}

// RemoveMember removes a member from a group. Owner only.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[pb.RemoveMemberRequest]) (*connect.Response[pb.RemoveMemberResponse], error) {
	s.logger.Info("RemoveMember request received", "group_id", req.Msg.GroupId, "user_id", req.Msg.UserId)

	if err := s.dir.RemoveMember(ctx, middleware.GetUserID(ctx), req.Msg.GroupId, req.Msg.UserId); err != nil {
		s.logger.Warn("RemoveMember failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.RemoveMemberResponse{}), nil
}

func (s *GroupService) withNames(ctx context.Context, g *models.Group) (*pb.Group, error) {
	names, err := s.lookupNames(ctx, g)
	if err != nil {
		return nil, err
	}
	return groupToAPI(g, names), nil
}

// lookupNames fetches every member of the given groups in one query.
func (s *GroupService) lookupNames(ctx context.Context, list ...*models.Group) (map[string]*models.User, error) {
	var ids []string
	for _, g := range list {
		ids = append(ids, g.MemberIDs...)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load member names", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return users, nil
}
