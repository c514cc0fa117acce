// AngelaMos | 2026
// dto.go

package user

import (
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

// UpdateUserRequest only carries the display name. Email and role are
// fixed after signup.
type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func ToUserResponse(u *User) domain.User {
	return domain.User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

func ToUserResponseList(users []User) []domain.User {
	responses := make([]domain.User, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func ToProfile(u *User, a Activity) domain.Profile {
	return domain.Profile{
		User:            ToUserResponse(u),
		DoubtsAsked:     a.DoubtsAsked,
		AnswersGiven:    a.AnswersGiven,
		CommentsGiven:   a.CommentsGiven,
		UpvotesReceived: a.UpvotesReceived,
		CreatedAt:       u.CreatedAt,
	}
}
