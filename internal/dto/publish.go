package dto

type SocialPublishPayload struct {
	AccountID string   `json:"account_id" validate:"required"`
	Caption   string   `json:"caption" validate:"max=2200"`
	MediaURLs []string `json:"media_urls" validate:"required,min=1,dive,url"`
}

type ScheduledPublishPayload struct {
	PostID uint `json:"post_id" validate:"required"`
}
