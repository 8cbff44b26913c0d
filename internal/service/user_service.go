package service

import (
	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserService manages store operators. Every change is written to the audit log.
type UserService interface {
	CreateOperator(req *CreateOperatorRequest, actor Actor) (*model.OperatorView, error)
	UpdateOperator(id uuid.UUID, req *UpdateOperatorRequest, actor Actor) (*model.OperatorView, error)
	SetPrivileges(id uuid.UUID, codes []string, actor Actor) (*model.OperatorView, error)
	DeleteOperator(id uuid.UUID, actor Actor) error
	ListOperators() ([]model.OperatorView, error)
	GetOperator(id uuid.UUID) (*model.OperatorView, error)
	ListRoles() ([]model.Role, error)
	ListPrivileges() ([]model.Privilege, error)
}

type CreateOperatorRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

// UpdateOperatorRequest leaves nil fields untouched.
type UpdateOperatorRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	RoleID   *uint   `json:"role_id"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	users      repository.UserRepository
	privileges repository.PrivilegeRepository
	roles      repository.RoleRepository
	audit      repository.AuditRepository
	now        Clock
	log        zerolog.Logger
}

func NewUserService(users repository.UserRepository, privileges repository.PrivilegeRepository, roles repository.RoleRepository, audit repository.AuditRepository, clock Clock, log zerolog.Logger) UserService {
	return &userService{
		users:      users,
		privileges: privileges,
		roles:      roles,
		audit:      audit,
		now:        clock,
		log:        log,
	}
}

func (s *userService) CreateOperator(req *CreateOperatorRequest, actor Actor) (*model.OperatorView, error) {
	const op = "users.create"
	if err := validate(op, req); err != nil {
		return nil, err
	}
	if existing, _ := s.users.FindByUsername(req.Username); existing != nil {
		return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "username " + req.Username + " is taken"}
	}
	role, err := s.roles.FindByID(req.RoleID)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "unknown role", Err: err}
	}

	user := &model.User{
		Username:   req.Username,
		FullName:   req.FullName,
		RoleID:     &role.ID,
		Role:       role,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	actor = actor.orSystem()
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	if err := s.users.Create(user); err != nil {
		return nil, apperr.Wrap(op, err)
	}

	s.record(actor, "operator_created", user)
	view := user.View()
	return &view, nil
}

// UpdateOperator edits an operator. Changing the role resets privileges to the
// role's set; deactivating or changing the password ends open sessions.
func (s *userService) UpdateOperator(id uuid.UUID, req *UpdateOperatorRequest, actor Actor) (*model.OperatorView, error) {
	const op = "users.update"
	if err := validate(op, req); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	actor = actor.orSystem()
	if req.IsActive != nil && !*req.IsActive && actor.ID == id.String() {
		return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "you cannot deactivate your own account"}
	}

	endSessions := false
	var role *model.Role
	if req.RoleID != nil && (user.RoleID == nil || *user.RoleID != *req.RoleID) {
		if role, err = s.roles.FindByID(*req.RoleID); err != nil {
			return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "unknown role", Err: err}
		}
		user.RoleID = &role.ID
		user.Role = role
		endSessions = true
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.IsActive != nil {
		if user.IsActive && !*req.IsActive {
			endSessions = true
		}
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, apperr.Wrap(op, err)
		}
		endSessions = true
	}
	if endSessions {
		user.TokenVersion = uuid.New().String()
	}
	user.UpdatedBy = actor.ID

	if err := s.users.Update(user); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	// after Update: Save would write the stale association back
	if role != nil {
		if err := s.users.UpdatePrivileges(id, role.Privileges); err != nil {
			return nil, apperr.Wrap(op, err)
		}
	}

	s.record(actor, "operator_updated", user)
	return s.GetOperator(id)
}

func (s *userService) SetPrivileges(id uuid.UUID, codes []string, actor Actor) (*model.OperatorView, error) {
	const op = "users.privileges"
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	privileges, err := s.privileges.FindByCodes(codes)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	if len(privileges) != len(uniqueCodes(codes)) {
		return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "unknown privilege code"}
	}
	if err := s.users.UpdatePrivileges(id, privileges); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	// tokens carry the privilege list
	if err := s.users.UpdateTokenVersion(id, uuid.New().String()); err != nil {
		return nil, apperr.Wrap(op, err)
	}

	s.record(actor.orSystem(), "operator_privileges", user)
	return s.GetOperator(id)
}

func (s *userService) DeleteOperator(id uuid.UUID, actor Actor) error {
	const op = "users.delete"
	actor = actor.orSystem()
	if actor.ID == id.String() {
		return &apperr.Error{Kind: apperr.Validation, Op: op, Message: "you cannot delete your own account"}
	}
	user, err := s.users.FindByID(id)
	if err != nil {
		return apperr.Wrap(op, err)
	}
	if err := s.users.Delete(id); err != nil {
		return apperr.Wrap(op, err)
	}
	s.record(actor, "operator_deleted", user)
	return nil
}

func (s *userService) ListOperators() ([]model.OperatorView, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, apperr.Wrap("users.list", err)
	}
	views := make([]model.OperatorView, len(users))
	for i := range users {
		views[i] = users[i].View()
	}
	return views, nil
}

func (s *userService) GetOperator(id uuid.UUID) (*model.OperatorView, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap("users.get", err)
	}
	view := user.View()
	return &view, nil
}

func (s *userService) ListRoles() ([]model.Role, error) {
	roles, err := s.roles.FindAll()
	return roles, apperr.Wrap("roles.list", err)
}

func (s *userService) ListPrivileges() ([]model.Privilege, error) {
	privileges, err := s.privileges.FindAll()
	return privileges, apperr.Wrap("privileges.list", err)
}

func (s *userService) record(actor Actor, action string, user *model.User) {
	if s.audit == nil {
		return
	}
	entry := &model.AuditLog{UserID: actor.ID, Action: action, Entity: "users", RecordID: user.ID.String(), NewValues: user.Username}
	entry.CreatedAt = s.now()
	if err := s.audit.Create(entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

func uniqueCodes(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}
