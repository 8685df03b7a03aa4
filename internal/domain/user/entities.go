package user

import "time"

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleLoanOfficer Role = "LOAN_OFFICER"
	RoleUnderwriter Role = "UNDERWRITER"
	RoleProcessor   Role = "PROCESSOR"
	RoleCustomer    Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLoanOfficer, RoleUnderwriter, RoleProcessor, RoleCustomer:
		return true
	}
	return false
}

// IsStaff: any role allowed to mutate loans and conditions.
func (r Role) IsStaff() bool { return r.Valid() && r != RoleCustomer }

// Table: users. Read-only from this service; accounts are managed elsewhere.
type User struct {
	ID uint64 `gorm:"primaryKey;column:id" json:"-"`
	// Public identifier, used as the opaque actor id
	UserID    string    `gorm:"column:user_id;size:64;not null;uniqueIndex:ux_users_user_id" json:"user_id"`
	Email     string    `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	FullName  string    `gorm:"column:full_name;size:200" json:"full_name,omitempty"`
	Role      Role      `gorm:"column:role;size:20;not null" json:"role"`
	Active    bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }
