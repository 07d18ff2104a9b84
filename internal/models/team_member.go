package models

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// TeamMember is one (user, role) entry in a project's membership list. Its
// lifecycle is owned entirely by the parent project; rows are never addressed
// outside of it.
type TeamMember struct {
	BaseModel

	ProjectID uint   `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_project_user"`
	Role      string `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
