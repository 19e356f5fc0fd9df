package models

import "time"

type Settings struct {
	ID             int64     `db:"id" json:"id"`
	PostType       string    `db:"post_type" json:"post_type"`
	PostStatus     string    `db:"post_status" json:"post_status"`
	PostFormat     string    `db:"post_format" json:"post_format"`
	Category       string    `db:"category" json:"category"`
	Denylist       string    `db:"denylist" json:"denylist"`
	Tags           string    `db:"tags" json:"tags"`
	IncludeReblogs bool      `db:"include_reblogs" json:"include_reblogs"`
	IncludeReplies bool      `db:"include_replies" json:"include_replies"`
	FeaturedImage  bool      `db:"featured_image" json:"featured_image"`
	FetchLimit     int       `db:"fetch_limit" json:"fetch_limit"`
	TitleLength    int       `db:"title_length" json:"title_length"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Post types reserved by the host platform; users can't import into these.
var ReservedPostTypes = []string{
	"page",
	"attachment",
	"revision",
	"nav_menu_item",
	"custom_css",
	"customize_changeset",
	"user_request",
	"oembed_cache",
	"wp_block",
	"wp_global_styles",
	"wp_template",
	"wp_template_part",
	"wp_navigation",
}

var AllowedPostStatuses = []string{
	PostStatusPublish,
	PostStatusDraft,
	PostStatusPending,
	PostStatusPrivate,
}

func DefaultSettings() *Settings {
	return &Settings{
		ID:             1,
		PostType:       "post",
		PostStatus:     PostStatusPublish,
		PostFormat:     "",
		Category:       "",
		IncludeReblogs: false,
		IncludeReplies: false,
		FeaturedImage:  true,
		FetchLimit:     15,
		TitleLength:    10,
	}
}
