package models

// Setting keys.
const (
	SettingInviteTarget = "invite_target"
)

// Setting is a persisted key/value configuration pair.
type Setting struct {
	Key   string `gorm:"primaryKey;size:100" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

// TableName specifies the table name for Setting model
func (Setting) TableName() string {
	return "settings"
}
