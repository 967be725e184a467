package auth

import "tourbooking/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserPublic struct {
	ID    int64  `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

type LoginResponse struct {
	User  UserPublic `json:"user"`
	Token string     `json:"token"`
}

func toUserPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:    u.ID,
		Role:  string(u.Role),
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
	}
}
