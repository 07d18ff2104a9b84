package models

type Project struct {
	BaseModel

	Title       string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"not null"`

	// Relationships
	TeamMembers []TeamMember `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
