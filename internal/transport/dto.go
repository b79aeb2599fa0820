package transport

import "time"

type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
}

// ListMutation is the body of add_to_list and remove_from_list. The list
// may be sent as "list" or "list_name".
type ListMutation struct {
	MovieID  *int64 `json:"movie_id"  form:"movie_id"`
	List     string `json:"list"      form:"list"`
	ListName string `json:"list_name" form:"list_name"`
}

func (m ListMutation) ListOrName() string {
	if m.List != "" {
		return m.List
	}
	return m.ListName
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RemoveResponse struct {
	Message string `json:"message"`
	Removed bool   `json:"removed"`
}

type Me struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type RoleChange struct {
	Role string `json:"role" form:"role"`
}

type RevokeRequest struct {
	JTI string `json:"jti" form:"jti"`
}

type CustomList struct {
	Name string `json:"name" form:"name"`
}
