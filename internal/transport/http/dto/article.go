package dto

type ArticleCreateRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=100"`
	Intro string `json:"intro" form:"intro" validate:"required,max=300"`
	Body  string `json:"body" form:"body" validate:"required"`
}

type ArticleUpdateRequest struct {
	Title *string `json:"title,omitempty" form:"title" validate:"omitempty,max=100"`
	Intro *string `json:"intro,omitempty" form:"intro" validate:"omitempty,max=300"`
	Body  *string `json:"body,omitempty" form:"body"`
}
