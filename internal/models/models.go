package models

import "time"

// User represents a member profile in the community
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	Interests []string  `json:"interests"`
	LikedBy   []string  `json:"liked_by"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Group represents a bounded-capacity activity group.
// Members keeps join order and must always contain AdminID.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Location    string    `json:"location"`
	AgeGroup    string    `json:"age_group"`
	AdminID     string    `json:"admin_id"`
	MaxMembers  int       `json:"max_members"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message represents a single chat entry in a group's feed.
// Seq is assigned by the message store and breaks timestamp ties,
// so feed order is (CreatedAt, Seq) and never changes after append.
type Message struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	SenderID   string    `json:"user_id"`
	SenderName string    `json:"user_name"`
	Body       string    `json:"message"`
	Seq        int64     `json:"seq"`
	CreatedAt  time.Time `json:"timestamp"`
}

// GroupRecommendation is a ranked candidate produced by the external
// recommendation engine. The score breakdown is opaque to this service.
type GroupRecommendation struct {
	Group     Group              `json:"group"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}
