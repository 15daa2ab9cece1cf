package model

import "golang.org/x/crypto/bcrypt"

// AdminUsername is the reserved handle of the permanent administrator account.
// A user with this username can never be deleted.
const AdminUsername = "admin"

// User is an account allowed to sign in. Password holds a bcrypt hash.
type User struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Password    string       `json:"password"`
	FullName    string       `json:"full_name"`
	Permissions []Permission `json:"permissions"`
}

func (u User) RecordID() string { return u.ID }

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasPermission checks if the user holds a specific permission
func (u *User) HasPermission(p Permission) bool {
	for _, held := range u.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

func (u *User) IsProtected() bool {
	return u.Username == AdminUsername
}

// UserResponse is used for API responses (without the password hash)
type UserResponse struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	FullName    string       `json:"full_name"`
	Permissions []Permission `json:"permissions"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []Permission{}
	}
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Permissions: perms,
	}
}
