package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/storage"
	"github.com/mmynk/spendwise/pkg/api"
	"github.com/mmynk/spendwise/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
	settings
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, opts ...Option) *GroupService {
	return &GroupService{store: store, settings: newSettings(opts)}
}

// CreateGroup creates a group owned by the caller, with one member per
// requested display name.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	s.logger.Info("CreateGroup request received",
		"name", name,
		"members_count", len(req.Msg.Members),
		"user_id", userID,
	)
	if name == "" {
		return nil, invalidArgument("group name required")
	}

	group := &models.Group{Name: name, OwnerID: userID}
	for _, m := range req.Msg.Members {
		if m = strings.TrimSpace(m); m != "" {
			group.Members = append(group.Members, models.Member{DisplayName: m})
		}
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, _, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	s.logger.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group and everything recorded in it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	s.logger.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if _, _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		s.logger.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a member to the group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	s.logger.Info("AddMember request received", "group_id", req.Msg.GroupID)

	name := strings.TrimSpace(req.Msg.DisplayName)
	if name == "" {
		return nil, invalidArgument("display_name required")
	}
	if _, _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, err
	}

	member := &models.Member{GroupID: req.Msg.GroupID, DisplayName: name}
	if err := s.store.AddMember(ctx, member); err != nil {
		s.logger.Error("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Member added", "group_id", req.Msg.GroupID, "member_id", member.ID)
	return connect.NewResponse(&api.AddMemberResponse{Member: toAPIMember(*member)}), nil
}

// RemoveMember removes a member that has no expenses or settlements.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	s.logger.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	group, _, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(req.Msg.MemberID) {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("member %s: %w", req.Msg.MemberID, storage.ErrNotFound))
	}

	if err := s.store.RemoveMember(ctx, req.Msg.MemberID); err != nil {
		if errors.Is(err, storage.ErrMemberInUse) {
			s.logger.Warn("RemoveMember refused", "member_id", req.Msg.MemberID, "error", err)
		} else {
			s.logger.Error("RemoveMember failed", "member_id", req.Msg.MemberID, "error", err)
		}
		return nil, toConnectError(err)
	}

	s.logger.Info("Member removed", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// snapshot reads a consistent view of a group the caller owns.
func (s *GroupService) snapshot(ctx context.Context, groupID string) (*models.Snapshot, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errGroupIDRequired)
	}
	snap, err := s.store.GetSnapshot(ctx, groupID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("GetSnapshot failed", "group_id", groupID, "error", err)
		}
		return nil, toConnectError(err)
	}
	if err := checkOwner(snap.Group, userID); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetGroupSummary recomputes balances and suggested settlements for the
// whole group.
func (s *GroupService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	groupID := req.Msg.GroupID
	s.logger.Info("GetGroupSummary request received", "group_id", groupID)

	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(snap, s.planOptions()...)
	if !summary.Drift.IsZero() {
		s.logger.Warn("Group balances do not sum to zero", "group_id", groupID, "drift", summary.Drift)
	}
	if len(summary.Unmatched) > 0 {
		s.logger.Warn("Unmatched balances after settlement", "group_id", groupID, "count", len(summary.Unmatched))
	}

	s.logger.Info("GetGroupSummary successful",
		"group_id", groupID,
		"expenses_count", len(snap.Expenses),
		"settlements_count", len(snap.Settlements),
		"suggested_count", len(summary.Suggested),
	)
	return connect.NewResponse(summary), nil
}

// GetCategorySummary recomputes balances and suggested settlements for the
// expenses of one category.
func (s *GroupService) GetCategorySummary(ctx context.Context, req *connect.Request[api.GetCategorySummaryRequest]) (*connect.Response[api.GetCategorySummaryResponse], error) {
	groupID, category := req.Msg.GroupID, strings.TrimSpace(req.Msg.Category)
	s.logger.Info("GetCategorySummary request received", "group_id", groupID, "category", category)

	if category == "" {
		return nil, invalidArgument("category required")
	}
	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	summary := SummarizeCategory(snap, category, s.planOptions()...)
	if len(summary.Unmatched) > 0 {
		s.logger.Warn("Unmatched balances after settlement",
			"group_id", groupID, "category", category, "count", len(summary.Unmatched))
	}

	s.logger.Info("GetCategorySummary successful",
		"group_id", groupID,
		"category", category,
		"expenses_count", len(summary.Expenses),
		"suggested_count", len(summary.Suggested),
	)
	return connect.NewResponse(summary), nil
}
