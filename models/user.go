package models

import "slices"

type User struct {
	ID             int64    `json:"id"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	PreferredTheme string   `json:"preferredTheme"`
	Privileges     []string `json:"privileges"`
}

func (u *User) HasPrivilege(privilege string) bool {
	return u != nil && slices.Contains(u.Privileges, privilege)
}

type CreateUserRequest struct {
	FirstName      string
	LastName       string
	PreferredTheme string
	Privileges     []string
}

type LoginInfo struct {
	Username string
	Password string
	UserID   int64
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}
