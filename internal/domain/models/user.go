package models

// User представляет пользователя
type User struct {
	ID       int64
	Username string
	PassHash []byte
	Email    string
	Address  string
	IsAdmin  bool
}
