package model

type UserRole string

const (
	Professor UserRole = "professor"
	Student   UserRole = "student"
)

type User struct {
	BaseModel
	// Nullable: accounts provisioned through the Telegram /start flow have
	// no email, and the unique index must not collide on empty strings.
	Email       *string  `gorm:"size:255;uniqueIndex" json:"email"`
	Password    string   `gorm:"size:255" json:"-"`
	DisplayName string   `gorm:"size:100" json:"displayName"`
	Role        UserRole `gorm:"type:enum('professor','student');default:'student'" json:"role"`

	// Set for students provisioned through the Telegram /start flow.
	// Such accounts have no email or password and log in only via the bot.
	TelegramID *int64 `gorm:"uniqueIndex" json:"telegramId,omitempty"`
}

// EmailAddress returns the account email, empty for bot-provisioned
// accounts.
func (u *User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

func (User) TableName() string {
	return "users"
}
