package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a store operator. Cashiers ring sales; administrators also manage
// the catalogue, accounting and settings.
type User struct {
	BaseModel
	Username     string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string      `gorm:"type:varchar(255)" json:"full_name"`
	RoleID       *uint       `gorm:"index" json:"role_id"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	Privileges   []Privilege `gorm:"many2many:user_privileges;" json:"privileges,omitempty"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"`
	LastSeenAt   *time.Time  `json:"last_seen_at,omitempty"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (u *User) HasPrivilege(code string) bool {
	for _, p := range u.Privileges {
		if p.Code == code {
			return true
		}
	}
	return false
}

// GetPrivilegeCodes lists the codes carried in session tokens.
func (u *User) GetPrivilegeCodes() []string {
	codes := make([]string, len(u.Privileges))
	for i, p := range u.Privileges {
		codes[i] = p.Code
	}
	return codes
}

// DisplayName is what receipts and journal entries record as the actor.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// OperatorView is the operator as returned by the API, without credentials.
type OperatorView struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	RoleID      *uint      `json:"role_id,omitempty"`
	RoleName    string     `json:"role_name,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Privileges  []string   `json:"privileges"`
}

func (u *User) View() OperatorView {
	v := OperatorView{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		RoleID:      u.RoleID,
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
		LastLoginAt: u.LastLoginAt,
		Privileges:  u.GetPrivilegeCodes(),
	}
	if u.Role != nil {
		v.RoleName = u.Role.Name
	}
	return v
}
