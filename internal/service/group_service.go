package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store   storage.Store
	reducer *calculator.Reducer
	metrics *metrics.Metrics
}

// NewGroupService creates a new GroupService. The reducer decides how
// settlements are derived from balances.
func NewGroupService(store storage.Store, reducer *calculator.Reducer, m *metrics.Metrics) *GroupService {
	return &GroupService{store: store, reducer: reducer, metrics: m}
}

// newMembers validates requested members and drops duplicates and members in skip.
func newMembers(requested []api.Member, skip map[string]bool) ([]models.Member, error) {
	var members []models.Member
	for _, m := range requested {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, fmt.Errorf("member name required")
		}
		if m.ID != "" {
			if skip[m.ID] {
				continue
			}
			skip[m.ID] = true
		}
		members = append(members, m.Model())
	}
	return members, nil
}

// CreateGroup creates a new group. The caller becomes its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group name required"))
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		slog.Error("CreateGroup failed - caller not found", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	others, err := newMembers(req.Msg.Members, map[string]bool{userID: true})
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	group := &models.Group{
		Name:        name,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
		Members:     append([]models.Member{user.Member()}, others...),
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: api.FromGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: api.FromGroup(group)}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = api.FromGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMembers appends members to a group. Members already present are ignored.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.Members),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if len(req.Msg.Members) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("at least one member required"))
	}

	existing := make(map[string]bool, len(group.Members))
	for _, id := range group.MemberIDs() {
		existing[id] = true
	}
	members, err := newMembers(req.Msg.Members, existing)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if len(members) > 0 {
		if err := s.store.AddGroupMembers(ctx, group.ID, members); err != nil {
			slog.Error("AddMembers failed", "group_id", group.ID, "error", err)
			return nil, storeError(err)
		}
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to fetch updated group", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Members added", "group_id", group.ID, "added", len(members))

	return connect.NewResponse(&api.AddMembersResponse{Group: api.FromGroup(updated)}), nil
}

// DeleteGroup removes a group and its expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group deleted", "group_id", group.ID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// GetGroupBalances computes member balances from the group's unsettled
// expenses and the transfers that would settle them.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := listExpenses(ctx, s.store, group.ID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not list expenses", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	balances := calculator.ComputeBalances(*group, expenses)
	settlements, err := s.reducer.Reduce(*group, balances)
	var residueErr *calculator.ResidueError
	if errors.As(err, &residueErr) {
		s.metrics.ResidueErrors.Inc()
		slog.Error("GetGroupBalances failed - unsettled residue",
			"group_id", group.ID,
			"residue", residueErr.Residue.String(),
			"members", residueErr.MemberIDs,
		)
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.SettlementsSuggested.Add(float64(len(settlements)))

	out := make([]api.Settlement, len(settlements))
	for i, settlement := range settlements {
		out[i] = api.FromSettlement(settlement)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", group.ID,
		"expenses_count", len(expenses),
		"members_count", balances.Len(),
		"settlements_count", len(settlements),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances:    api.FromBalances(group, balances),
		Settlements: out,
	}), nil
}

// GetUserBalance totals what the caller owes and is owed across their groups.
func (s *GroupService) GetUserBalance(ctx context.Context, req *connect.Request[api.GetUserBalanceRequest]) (*connect.Response[api.GetUserBalanceResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetUserBalance request received", "user_id", userID)

	stored, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("GetUserBalance failed - could not list groups", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	groups := make([]models.Group, len(stored))
	var expenses []models.Expense
	for i, group := range stored {
		groups[i] = *group
		groupExpenses, err := listExpenses(ctx, s.store, group.ID)
		if err != nil {
			slog.Error("GetUserBalance failed - could not list expenses", "group_id", group.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		expenses = append(expenses, groupExpenses...)
	}

	summary := calculator.SummarizeMember(userID, groups, expenses)

	return connect.NewResponse(&api.GetUserBalanceResponse{
		UserID:          userID,
		TotalOwed:       summary.TotalOwed,
		TotalOwedToUser: summary.TotalOwedToMember,
		Net:             summary.Net(),
		Groups:          int32(summary.Groups),
	}), nil
}
