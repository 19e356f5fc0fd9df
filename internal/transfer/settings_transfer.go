package transfer

import "github.com/golang-jwt/jwt/v5"

type SettingsUpdate struct {
	Host           *string `json:"host"`
	PostType       string  `json:"post_type"`
	PostStatus     string  `json:"post_status"`
	PostFormat     string  `json:"post_format"`
	Category       string  `json:"category"`
	Denylist       string  `json:"denylist"`
	Tags           string  `json:"tags"`
	IncludeReblogs *bool   `json:"include_reblogs"`
	IncludeReplies *bool   `json:"include_replies"`
	FeaturedImage  *bool   `json:"featured_image"`
	FetchLimit     int     `json:"fetch_limit"`
	TitleLength    int     `json:"title_length"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
