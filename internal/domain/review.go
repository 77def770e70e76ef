package domain

import "time"

// Moderation states shared by reviews and comments
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// UserInfo is the author block the backend attaches to reviews and comments.
// Anonymous posts carry only a display name.
type UserInfo struct {
	ID       *int64 `json:"id,omitempty"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Image is an attachment on a review or comment
type Image struct {
	ID        int64     `json:"id"`
	Image     string    `json:"image"`
	Caption   string    `json:"caption,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a company review. List responses omit Content and Images.
type Review struct {
	ID                int64     `json:"id"`
	Company           int64     `json:"company"`
	CompanyName       string    `json:"company_name,omitempty"`
	User              *int64    `json:"user,omitempty"`
	UserInfo          *UserInfo `json:"user_info,omitempty"`
	Title             string    `json:"title"`
	Content           string    `json:"content,omitempty"`
	OverallRating     int       `json:"overall_rating"`
	WelfareRating     int       `json:"welfare_rating"`
	EnvironmentRating int       `json:"environment_rating"`
	DevelopmentRating int       `json:"development_rating"`
	ManagementRating  int       `json:"management_rating"`
	JobTitle          string    `json:"job_title,omitempty"`
	EmploymentStatus  string    `json:"employment_status,omitempty"`
	WorkYears         *int      `json:"work_years,omitempty"`
	IsAnonymous       bool      `json:"is_anonymous"`
	ModerationStatus  string    `json:"moderation_status,omitempty"`
	HelpfulCount      int       `json:"helpful_count"`
	CommentCount      int       `json:"comment_count"`
	ViewCount         int       `json:"view_count"`
	Images            []Image   `json:"images,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// ReviewInput is the create/update body for a review. Ratings are 1-5.
type ReviewInput struct {
	Company           int64  `json:"company"`
	Title             string `json:"title"`
	Content           string `json:"content"`
	OverallRating     int    `json:"overall_rating"`
	WelfareRating     int    `json:"welfare_rating"`
	EnvironmentRating int    `json:"environment_rating"`
	DevelopmentRating int    `json:"development_rating"`
	ManagementRating  int    `json:"management_rating"`
	JobTitle          string `json:"job_title,omitempty"`
	EmploymentStatus  string `json:"employment_status,omitempty"`
	WorkYears         *int   `json:"work_years,omitempty"`
	IsAnonymous       bool   `json:"is_anonymous"`
}

// Comment is a reply on a review, optionally nested under another comment
type Comment struct {
	ID               int64     `json:"id"`
	Review           int64     `json:"review"`
	User             *int64    `json:"user,omitempty"`
	UserInfo         *UserInfo `json:"user_info,omitempty"`
	Parent           *int64    `json:"parent,omitempty"`
	Content          string    `json:"content"`
	ModerationStatus string    `json:"moderation_status,omitempty"`
	HelpfulCount     int       `json:"helpful_count"`
	IsAnonymous      bool      `json:"is_anonymous"`
	Images           []Image   `json:"images,omitempty"`
	ReplyCount       int       `json:"reply_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// CommentInput is the create body for a comment
type CommentInput struct {
	Review      int64  `json:"review"`
	Parent      *int64 `json:"parent,omitempty"`
	Content     string `json:"content"`
	IsAnonymous bool   `json:"is_anonymous"`
}
