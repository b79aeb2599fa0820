package models

import (
	"slices"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ListFavorites = "favorites"
	ListWatched   = "watched"
	ListToWatch   = "to_watch"
)

// ListNames is the fixed set of per-user lists, in display order.
var ListNames = []string{ListFavorites, ListWatched, ListToWatch}

func ValidListName(name string) bool {
	return slices.Contains(ListNames, name)
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	Username     string    `gorm:"primaryKey;size:64"        json:"username"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:user"     json:"role"`
	CreatedAt    time.Time `gorm:"not null"                  json:"created_at"`
}

// ListItem is one membership of a movie in a user's list. The unique index
// makes every list a set.
type ListItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                   json:"-"`
	Username  string    `gorm:"size:64;not null;uniqueIndex:idx_list_item" json:"username"`
	ListName  string    `gorm:"size:16;not null;uniqueIndex:idx_list_item" json:"list"`
	MovieID   int64     `gorm:"not null;uniqueIndex:idx_list_item"         json:"movie_id"`
	CreatedAt time.Time `gorm:"not null"                                   json:"created_at"`
}

type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index"     json:"expires_at"`
	RevokedAt time.Time `gorm:"not null"           json:"revoked_at"`
}

type Movie struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null;index"           json:"title"`
	Genre     string    `gorm:"not null"                 json:"genre"`
	Rating    float64   `gorm:"not null"                 json:"rating"`
	CreatedAt time.Time `gorm:"not null"                 json:"-"`
}

// Lists maps every list name to the movie ids it contains.
type Lists map[string][]int64

func EmptyLists() Lists {
	out := make(Lists, len(ListNames))
	for _, name := range ListNames {
		out[name] = []int64{}
	}
	return out
}

// UserProfile is the sanitized view of a user record.
type UserProfile struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Lists     Lists     `json:"lists"`
	CreatedAt time.Time `json:"created_at"`
}
