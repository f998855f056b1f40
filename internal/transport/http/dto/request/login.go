package request

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}
