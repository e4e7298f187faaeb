// Package models defines the persistent entities and API-facing shapes of the service.
package models

import "time"

// Role is the capability level of a member.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// AccountKind distinguishes password accounts from federated ones.
type AccountKind string

const (
	KindNormal AccountKind = "NORMAL"
	KindSocial AccountKind = "SOCIAL"
)

// Member is a registered account. Login id, nickname and email are unique
// at the storage level; the service pre-checks them for friendlier errors.
type Member struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	LoginID   string       `gorm:"size:64;not null;uniqueIndex:idx_members_login_id" json:"loginId"`
	Password  string       `gorm:"not null" json:"-"`
	Nickname  string       `gorm:"size:32;not null;uniqueIndex:idx_members_nickname" json:"nickname"`
	Email     *string      `gorm:"size:255;uniqueIndex:idx_members_email" json:"email,omitempty"`
	Role      Role         `gorm:"size:16;not null;default:USER" json:"role"`
	Kind      AccountKind  `gorm:"size:16;not null;default:NORMAL" json:"kind"`
	SocialID  *string      `gorm:"size:128;uniqueIndex:idx_members_social_id" json:"-"`
	Image     *MemberImage `gorm:"foreignKey:MemberID" json:"image,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsAdmin reports whether the member holds the ADMIN role.
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// CanModify reports whether the member may change content written by ownerID.
func (m *Member) CanModify(ownerID uint) bool {
	return m != nil && (m.ID == ownerID || m.IsAdmin())
}
