package auth

import (
	"github.com/google/uuid"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

// Principal is the authenticated user acting on a request
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

// Is reports whether the principal holds one of the given roles
func (p Principal) Is(roles ...models.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// RoleSet is an allow-list of roles. A nil RoleSet admits any authenticated role.
type RoleSet map[models.Role]struct{}

// Roles builds a RoleSet from the given roles
func Roles(roles ...models.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// AnyAuthenticated admits every signed-in principal
var AnyAuthenticated RoleSet

// Permitted decides whether currentRole may proceed under allowed.
// A nil currentRole is an unauthenticated caller and is never permitted.
func Permitted(currentRole *models.Role, allowed RoleSet) bool {
	if currentRole == nil || !currentRole.Valid() {
		return false
	}
	if allowed == nil {
		return true
	}
	_, ok := allowed[*currentRole]
	return ok
}

// Operation names a role-sensitive action
type Operation string

const (
	OpTrainingCreate      Operation = "training:create"
	OpTrainingUpdate      Operation = "training:update"
	OpTrainingDelete      Operation = "training:delete"
	OpTrainingJoin        Operation = "training:join"
	OpTrainingLeave       Operation = "training:leave"
	OpAttendanceMark      Operation = "attendance:mark"
	OpAttendanceExport    Operation = "attendance:export"
	OpMatchCreate         Operation = "match:create"
	OpMatchUpdate         Operation = "match:update"
	OpMatchDelete         Operation = "match:delete"
	OpMatchJoin           Operation = "match:join"
	OpMatchLeave          Operation = "match:leave"
	OpRosterManage        Operation = "roster:manage"
	OpMatchAttendanceMark Operation = "match-attendance:mark"
	OpAnnouncementCreate  Operation = "announcement:create"
	OpAnnouncementUpdate  Operation = "announcement:update"
	OpAnnouncementDelete  Operation = "announcement:delete"
	OpAnnouncementExpired Operation = "announcement:view-expired"
	OpUsersManage         Operation = "users:manage"
	OpDirectoryView       Operation = "directory:view"
	OpAssignmentsManage   Operation = "assignments:manage"
	OpAssignmentsOwn      Operation = "assignments:own"
	OpCampaignManage      Operation = "campaign:manage"
	OpFundraisingView     Operation = "fundraising:view"
	OpSponsorshipReview   Operation = "sponsorship:review"
	OpNotificationCreate  Operation = "notification:create"
	OpPerformanceWrite    Operation = "performance-note:write"
	OpPerformanceRead     Operation = "performance-note:read"
	OpAnalyticsView       Operation = "analytics:view"
	OpCalendarView        Operation = "calendar:view"
)

var (
	coachOrAdmin = Roles(models.RoleCoach, models.RoleAdmin)
	staffish     = Roles(models.RoleStaff, models.RoleCoach, models.RoleAdmin)
	adminOnly    = Roles(models.RoleAdmin)
	studentOnly  = Roles(models.RoleStudent)
)

// policy is the single operation table consumed by the HTTP gate and the services
var policy = map[Operation]RoleSet{
	OpTrainingCreate:      coachOrAdmin,
	OpTrainingUpdate:      coachOrAdmin,
	OpTrainingDelete:      coachOrAdmin,
	OpTrainingJoin:        studentOnly,
	OpTrainingLeave:       studentOnly,
	OpAttendanceMark:      coachOrAdmin,
	OpAttendanceExport:    coachOrAdmin,
	OpMatchCreate:         coachOrAdmin,
	OpMatchUpdate:         coachOrAdmin,
	OpMatchDelete:         coachOrAdmin,
	OpMatchJoin:           studentOnly,
	OpMatchLeave:          studentOnly,
	OpRosterManage:        coachOrAdmin,
	OpMatchAttendanceMark: coachOrAdmin,
	OpAnnouncementCreate:  staffish,
	OpAnnouncementUpdate:  staffish,
	OpAnnouncementDelete:  staffish,
	OpAnnouncementExpired: staffish,
	OpUsersManage:         adminOnly,
	OpDirectoryView:       staffish,
	OpAssignmentsManage:   adminOnly,
	OpAssignmentsOwn:      coachOrAdmin,
	OpCampaignManage:      adminOnly,
	OpFundraisingView:     Roles(models.RoleStaff, models.RoleAdmin),
	OpSponsorshipReview:   adminOnly,
	OpNotificationCreate:  adminOnly,
	OpPerformanceWrite:    coachOrAdmin,
	OpPerformanceRead:     coachOrAdmin,
	OpAnalyticsView:       AnyAuthenticated,
	OpCalendarView:        AnyAuthenticated,
}

// AllowedRoles returns the allow-list for op and whether op is known
func AllowedRoles(op Operation) (RoleSet, bool) {
	set, ok := policy[op]
	return set, ok
}

// Can reports whether role may perform op. Unknown operations are denied.
func Can(role *models.Role, op Operation) bool {
	allowed, ok := policy[op]
	if !ok {
		return false
	}
	return Permitted(role, allowed)
}

// Authorize returns ErrPermissionDenied unless p may perform op
func Authorize(p Principal, op Operation) error {
	role := p.Role
	if p.UserID == uuid.Nil {
		return apperrors.ErrUnauthenticated
	}
	if !Can(&role, op) {
		return apperrors.NewForbiddenError("your role is not allowed to " + string(op))
	}
	return nil
}

// CanModifyOwned reports whether p may change a record owned by ownerID.
// Admins may change anything; everyone else only their own records.
func CanModifyOwned(p Principal, ownerID uuid.UUID) bool {
	return p.Role == models.RoleAdmin || p.UserID == ownerID
}

// AuthorizeOwned combines an operation check with ownership
func AuthorizeOwned(p Principal, op Operation, ownerID uuid.UUID) error {
	if err := Authorize(p, op); err != nil {
		return err
	}
	if !CanModifyOwned(p, ownerID) {
		return apperrors.NewForbiddenError("only the owning coach or an admin can change this record")
	}
	return nil
}
