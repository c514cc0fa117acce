// AngelaMos | 2026
// operations.go

package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) Register(
	ctx context.Context,
	name, email, password string,
	role domain.Role,
) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, request{
		op:     "Register",
		method: http.MethodPost,
		path:   "/users/register",
		body: map[string]string{
			"name":     name,
			"email":    email,
			"password": password,
			"role":     string(role),
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(
	ctx context.Context,
	email, password string,
) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, request{
		op:     "Login",
		method: http.MethodPost,
		path:   "/users/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{
		op:     "Logout",
		method: http.MethodPost,
		path:   "/users/logout",
	}, nil)
}

func (c *Client) GetUser(ctx context.Context, id string) (*domain.Profile, error) {
	var out domain.Profile
	err := c.do(ctx, request{
		op:     "GetUser",
		method: http.MethodGet,
		path:   "/users/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id, name string) (*domain.Profile, error) {
	var out domain.Profile
	err := c.do(ctx, request{
		op:     "UpdateUser",
		method: http.MethodPatch,
		path:   "/users/" + url.PathEscape(id),
		body:   map[string]string{"name": name},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMentors(
	ctx context.Context,
	page, limit int,
) (*domain.Page[domain.User], error) {
	var out domain.Page[domain.User]
	err := c.do(ctx, request{
		op:     "ListMentors",
		method: http.MethodGet,
		path:   "/users/mentors/approved",
		query:  pageQuery(page, limit),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDoubts(
	ctx context.Context,
	params domain.ListDoubtsParams,
) (*domain.Page[domain.Doubt], error) {
	q := pageQuery(params.Page, params.Limit)
	if params.AuthorID != "" {
		q.Set("authorId", params.AuthorID)
	}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}

	var out domain.Page[domain.Doubt]
	err := c.do(ctx, request{
		op:     "ListDoubts",
		method: http.MethodGet,
		path:   "/doubts",
		query:  q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDoubt(ctx context.Context, id string) (*domain.Doubt, error) {
	var out domain.Doubt
	err := c.do(ctx, request{
		op:     "GetDoubt",
		method: http.MethodGet,
		path:   "/doubts/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateDoubt(ctx context.Context, in domain.DoubtInput) (*domain.Doubt, error) {
	var out domain.Doubt
	err := c.do(ctx, request{
		op:     "CreateDoubt",
		method: http.MethodPost,
		path:   "/doubts",
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDoubt(
	ctx context.Context,
	id string,
	patch domain.DoubtPatch,
) (*domain.Doubt, error) {
	var out domain.Doubt
	err := c.do(ctx, request{
		op:     "UpdateDoubt",
		method: http.MethodPatch,
		path:   "/doubts/" + url.PathEscape(id),
		body:   patch,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDoubt(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:     "DeleteDoubt",
		method: http.MethodDelete,
		path:   "/doubts/" + url.PathEscape(id),
	}, nil)
}

func (c *Client) ResolveDoubt(ctx context.Context, id string) (*domain.ResolveResult, error) {
	var out domain.ResolveResult
	err := c.do(ctx, request{
		op:     "ResolveDoubt",
		method: http.MethodPost,
		path:   "/doubts/" + url.PathEscape(id) + "/resolve",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAnswers(ctx context.Context, doubtID string) ([]domain.Answer, error) {
	var out []domain.Answer
	err := c.do(ctx, request{
		op:     "ListAnswers",
		method: http.MethodGet,
		path:   "/answers/doubt/" + url.PathEscape(doubtID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAnswer(ctx context.Context, doubtID, content string) (*domain.Answer, error) {
	var out domain.Answer
	err := c.do(ctx, request{
		op:     "CreateAnswer",
		method: http.MethodPost,
		path:   "/answers/" + url.PathEscape(doubtID),
		body:   map[string]string{"content": content},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAnswer(ctx context.Context, id, content string) (*domain.Answer, error) {
	var out domain.Answer
	err := c.do(ctx, request{
		op:     "UpdateAnswer",
		method: http.MethodPatch,
		path:   "/answers/" + url.PathEscape(id),
		body:   map[string]string{"content": content},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAnswer(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:     "DeleteAnswer",
		method: http.MethodDelete,
		path:   "/answers/" + url.PathEscape(id),
	}, nil)
}

func (c *Client) ListComments(ctx context.Context, doubtID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := c.do(ctx, request{
		op:     "ListComments",
		method: http.MethodGet,
		path:   "/comments/doubt/" + url.PathEscape(doubtID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, doubtID, content string) (*domain.Comment, error) {
	var out domain.Comment
	err := c.do(ctx, request{
		op:     "CreateComment",
		method: http.MethodPost,
		path:   "/comments",
		body:   map[string]string{"doubtId": doubtID, "content": content},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateComment(ctx context.Context, id, content string) (*domain.Comment, error) {
	var out domain.Comment
	err := c.do(ctx, request{
		op:     "UpdateComment",
		method: http.MethodPatch,
		path:   "/comments/" + url.PathEscape(id),
		body:   map[string]string{"content": content},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, request{
		op:     "DeleteComment",
		method: http.MethodDelete,
		path:   "/comments/" + url.PathEscape(id),
	}, nil)
}

func (c *Client) CreateUpvote(ctx context.Context, answerID string) (*domain.UpvoteResult, error) {
	var out domain.UpvoteResult
	err := c.do(ctx, request{
		op:     "CreateUpvote",
		method: http.MethodPost,
		path:   "/upvotes",
		body:   map[string]string{"answerId": answerID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUpvote(ctx context.Context, upvoteID string) (*domain.UpvoteResult, error) {
	var out domain.UpvoteResult
	err := c.do(ctx, request{
		op:     "DeleteUpvote",
		method: http.MethodDelete,
		path:   "/upvotes/" + url.PathEscape(upvoteID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSpacePosts(
	ctx context.Context,
	page, limit int,
) (*domain.Page[domain.SpacePost], error) {
	var out domain.Page[domain.SpacePost]
	err := c.do(ctx, request{
		op:     "ListSpacePosts",
		method: http.MethodGet,
		path:   "/junior-space-posts",
		query:  pageQuery(page, limit),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSpacePost(ctx context.Context, content string) (*domain.SpacePost, error) {
	var out domain.SpacePost
	err := c.do(ctx, request{
		op:     "CreateSpacePost",
		method: http.MethodPost,
		path:   "/junior-space-posts",
		body:   map[string]string{"content": content},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchJWKS returns the server's public key set. The JWKS document lives
// outside the /api prefix, so jwksURL is absolute.
func (c *Client) FetchJWKS(ctx context.Context, jwksURL string) ([]byte, error) {
	target, err := url.Parse(jwksURL)
	if err != nil {
		return nil, &RemoteError{
			Op:       "FetchJWKS",
			Category: CategoryValidation,
			Message:  "invalid jwks url",
			Err:      err,
		}
	}

	sub := &Client{
		baseURL:     &url.URL{Scheme: target.Scheme, Host: target.Host},
		http:        c.http,
		credentials: nil,
		logger:      c.logger,
		tracer:      c.tracer,
	}

	var out []byte
	err = sub.do(WithCredential(ctx, ""), request{
		op:     "FetchJWKS",
		method: http.MethodGet,
		path:   target.Path,
		raw:    true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
