package dto

type LoginRequest struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  MeResponse `json:"user"`
}

type MeResponse struct {
	UserName string `json:"user_name"`
	Role     string `json:"role"`
	Coupons  int    `json:"coupons"`
}
