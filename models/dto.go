package models

type TranslationInput struct {
	LanguageCode string `json:"language_code" binding:"required,max=10"`
	Title        string `json:"title" binding:"max=255"`
	Body         string `json:"body"`
}

// TranslationPatch updates or adds one translation. Nil fields keep the stored value.
type TranslationPatch struct {
	LanguageCode string  `json:"language_code" binding:"required,max=10"`
	Title        *string `json:"title" binding:"omitempty,max=255"`
	Body         *string `json:"body"`
}

type CreatePostRequest struct {
	DefaultLanguage string             `json:"default_language" binding:"required,max=10"`
	CoverImage      string             `json:"cover_image"`
	Translations    []TranslationInput `json:"translations" binding:"required,min=1,dive"`
	Tags            []string           `json:"tags" binding:"dive,max=100"`
	Publish         bool               `json:"publish"`
}

// UpdatePostRequest leaves nil fields untouched. A non-nil Translations list
// is the complete desired set; stored languages missing from it are deleted.
type UpdatePostRequest struct {
	DefaultLanguage *string            `json:"default_language" binding:"omitempty,max=10"`
	CoverImage      *string            `json:"cover_image"`
	Translations    []TranslationPatch `json:"translations" binding:"omitempty,dive"`
	Tags            []string           `json:"tags" binding:"dive,max=100"`
}

type TagNameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type ReactionRequest struct {
	Type ReactionType `json:"type" binding:"required"`
}

type FeedParams struct {
	Page     int `form:"page,default=1" validate:"min=1"`
	PageSize int `form:"page_size,default=20" validate:"min=1,max=100"`
}
