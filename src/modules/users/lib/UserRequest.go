package users

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
}

// LoginRequest accepts either the username or the email in Username.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfilePatch is the body of PUT /api/users/:id/profile. Changing the
// password requires the current one.
type ProfilePatch struct {
	FirstName       *string `json:"firstName,omitempty" validate:"omitempty,max=64"`
	LastName        *string `json:"lastName,omitempty" validate:"omitempty,max=64"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty" validate:"omitempty,max=512"`
	CurrentPassword string  `json:"currentPassword,omitempty"`
	NewPassword     string  `json:"newPassword,omitempty" validate:"omitempty,min=6,max=72"`
}

type FavoriteRequest struct {
	ContentID uint `json:"contentId" validate:"required"`
}

// ProgressRequest records a playback position in seconds.
type ProgressRequest struct {
	ContentID       uint    `json:"contentId" validate:"required"`
	ProgressSeconds float64 `json:"progressSeconds" validate:"gte=0"`
	Duration        float64 `json:"duration" validate:"gte=0"`
}

type WatchlistRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1024"`
	IsPublic    bool   `json:"isPublic"`
}

type WatchlistItemRequest struct {
	ContentID uint `json:"contentId" validate:"required"`
}

type NotificationSettingsPatch struct {
	NewContent          *bool `json:"newContent,omitempty"`
	FavoriteUpdates     *bool `json:"favoriteUpdates,omitempty"`
	CommentReplies      *bool `json:"commentReplies,omitempty"`
	ReviewLikes         *bool `json:"reviewLikes,omitempty"`
	SystemNotifications *bool `json:"systemNotifications,omitempty"`
	EmailNotifications  *bool `json:"emailNotifications,omitempty"`
}

// AdminUserPatch is the body of PUT /api/admin/users/:id.
type AdminUserPatch struct {
	IsActive *bool `json:"isActive,omitempty"`
	IsAdmin  *bool `json:"isAdmin,omitempty"`
}
