// AngelaMos | 2026
// domain.go

// Package domain holds the wire types shared by the API server and the
// client core. Field names follow the REST contract.
package domain

import (
	"slices"
	"strings"
	"time"
)

type Role string

const (
	RoleJunior Role = "junior"
	RoleMentor Role = "mentor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleJunior, RoleMentor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Signupable reports whether r may be chosen at public signup.
func (r Role) Signupable() bool {
	return r == RoleJunior || r == RoleMentor
}

type DoubtStatus string

const (
	StatusPending  DoubtStatus = "pending"
	StatusAnswered DoubtStatus = "answered"
	StatusResolved DoubtStatus = "resolved"
)

// Rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s DoubtStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusAnswered:
		return 1
	case StatusResolved:
		return 2
	default:
		return -1
	}
}

const (
	AnswerMinLength  = 20
	ContentMaxLength = 10000
	TitleMaxLength   = 200
	MaxTags          = 5
)

// NormalizeTags lowercases, trims and de-duplicates tags, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Profile struct {
	User
	DoubtsAsked     int       `json:"doubtsAsked"`
	AnswersGiven    int       `json:"answersGiven"`
	CommentsGiven   int       `json:"commentsGiven"`
	UpvotesReceived int       `json:"upvotesReceived"`
	CreatedAt       time.Time `json:"createdAt"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Doubt struct {
	ID           string      `json:"id"`
	AuthorID     string      `json:"authorId"`
	AuthorName   string      `json:"authorName"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Tags         []string    `json:"tags"`
	Status       DoubtStatus `json:"status"`
	AnswerCount  int         `json:"answerCount"`
	CommentCount int         `json:"commentCount"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type Answer struct {
	ID             string    `json:"id"`
	DoubtID        string    `json:"doubtId"`
	MentorID       string    `json:"mentorId"`
	MentorName     string    `json:"mentorName"`
	Content        string    `json:"content"`
	UpvoteCount    int       `json:"upvoteCount"`
	ViewerUpvoteID string    `json:"viewerUpvoteId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Comment struct {
	ID         string    `json:"id"`
	DoubtID    string    `json:"doubtId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Upvote struct {
	ID       string `json:"id"`
	AnswerID string `json:"answerId"`
	UserID   string `json:"userId"`
}

// UpvoteResult carries the authoritative count after a vote change. Upvote
// is nil after a removal.
type UpvoteResult struct {
	Upvote      *Upvote `json:"upvote,omitempty"`
	UpvoteCount int     `json:"upvoteCount"`
}

type SpacePost struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type DoubtInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type DoubtPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type ResolveResult struct {
	Doubt   Doubt `json:"doubt"`
	Changed bool  `json:"changed"`
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type ListDoubtsParams struct {
	Page     int
	Limit    int
	AuthorID string
	Status   DoubtStatus
}
