package dto

type StudioGeneratePayload struct {
	ProjectID uint   `json:"project_id" validate:"required"`
	Prompt    string `json:"prompt" validate:"required"`
	Format    string `json:"format" validate:"omitempty,oneof=post carousel story"`
}

type WizardImagePayload struct {
	WizardID uint   `json:"wizard_id" validate:"required"`
	Prompt   string `json:"prompt" validate:"required"`
	Count    int    `json:"count" validate:"omitempty,gte=1,lte=10"`
}

type CarouselRenderPayload struct {
	ProjectID uint `json:"project_id" validate:"required"`
	Slides    int  `json:"slides" validate:"required,gte=1,lte=20"`
}

type ContentScrapePayload struct {
	URL string `json:"url" validate:"required,url"`
}
