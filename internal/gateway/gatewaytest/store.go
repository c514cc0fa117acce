// AngelaMos | 2026
// store.go

package gatewaytest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/doubtspace/internal/answer"
	"github.com/carterperez-dev/doubtspace/internal/comment"
	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/doubt"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
	"github.com/carterperez-dev/doubtspace/internal/space"
	"github.com/carterperez-dev/doubtspace/internal/user"
	"github.com/carterperez-dev/doubtspace/internal/vote"
)

// store holds the tables the Postgres repositories would. Each repository
// type below is one package's view of it, so counters and cascades line up
// the way the joins and foreign keys make them line up in the database.
type store struct {
	mu       sync.Mutex
	seq      int64
	order    map[string]int64
	users    map[string]*user.User
	doubts   map[string]*doubt.Doubt
	answers  map[string]*answer.Answer
	comments map[string]*comment.Comment
	votes    map[string]*vote.Vote
	posts    map[string]*space.Post
}

func newStore() *store {
	return &store{
		order:    make(map[string]int64),
		users:    make(map[string]*user.User),
		doubts:   make(map[string]*doubt.Doubt),
		answers:  make(map[string]*answer.Answer),
		comments: make(map[string]*comment.Comment),
		votes:    make(map[string]*vote.Vote),
		posts:    make(map[string]*space.Post),
	}
}

func newID() string {
	return uuid.New().String()
}

// stampLocked records insertion order, which breaks created_at ties.
func (s *store) stampLocked(id string) time.Time {
	s.seq++
	s.order[id] = s.seq
	return time.Now()
}

func (s *store) before(aID string, aAt time.Time, bID string, bAt time.Time) int {
	if c := aAt.Compare(bAt); c != 0 {
		return c
	}
	return cmp.Compare(s.order[aID], s.order[bID])
}

func pageOf[T any](items []T, page core.PageParams) []T {
	page.Normalize()
	start := min(page.Offset(), len(items))
	end := min(start+page.PageSize, len(items))
	return items[start:end]
}

func (s *store) nameLocked(userID string) string {
	if u, ok := s.users[userID]; ok {
		return u.Name
	}
	return ""
}

func (s *store) votesForLocked(answerID string) int {
	n := 0
	for _, v := range s.votes {
		if v.AnswerID == answerID {
			n++
		}
	}
	return n
}

func (s *store) doubtViewLocked(d *doubt.Doubt) doubt.Doubt {
	out := *d
	out.Tags = slices.Clone(d.Tags)
	out.AuthorName = s.nameLocked(d.AuthorID)
	out.AnswerCount, out.CommentCount = 0, 0
	for _, a := range s.answers {
		if a.DoubtID == d.ID {
			out.AnswerCount++
		}
	}
	for _, c := range s.comments {
		if c.DoubtID == d.ID {
			out.CommentCount++
		}
	}
	return out
}

func (s *store) answerViewLocked(a *answer.Answer, viewerID string) answer.Answer {
	out := *a
	out.MentorName = s.nameLocked(a.MentorID)
	out.UpvoteCount = s.votesForLocked(a.ID)
	out.ViewerUpvoteID = ""
	if viewerID != "" {
		for _, v := range s.votes {
			if v.AnswerID == a.ID && v.UserID == viewerID {
				out.ViewerUpvoteID = v.ID
			}
		}
	}
	return out
}

func (s *store) deleteAnswerLocked(id string) {
	delete(s.answers, id)
	for vid, v := range s.votes {
		if v.AnswerID == id {
			delete(s.votes, vid)
		}
	}
}

type userRepo struct{ *store }

func (r userRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u.CreatedAt = r.stampLocked(u.ID)
	u.UpdatedAt = u.CreatedAt
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (r userRepo) UpdateName(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	stored.Name = u.Name
	stored.UpdatedAt = time.Now()
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (r userRepo) Activity(_ context.Context, id string) (user.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var a user.Activity
	for _, d := range r.doubts {
		if d.AuthorID == id {
			a.DoubtsAsked++
		}
	}
	for _, ans := range r.answers {
		if ans.MentorID == id {
			a.AnswersGiven++
			a.UpvotesReceived += r.votesForLocked(ans.ID)
		}
	}
	for _, c := range r.comments {
		if c.AuthorID == id {
			a.CommentsGiven++
		}
	}
	return a, nil
}

func (r userRepo) ListByRole(_ context.Context, role domain.Role, page core.PageParams) ([]user.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := []user.User{}
	for _, u := range r.users {
		if u.Role == role {
			users = append(users, *u)
		}
	}
	slices.SortFunc(users, func(a, b user.User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return pageOf(users, page), len(users), nil
}

func (r userRepo) CountByRole(context.Context) (map[domain.Role]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.Role]int)
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

type doubtRepo struct{ *store }

func (r doubtRepo) List(_ context.Context, f doubt.ListFilter) ([]doubt.Doubt, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doubts := []doubt.Doubt{}
	for _, d := range r.doubts {
		if f.AuthorID != "" && d.AuthorID != f.AuthorID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		doubts = append(doubts, r.doubtViewLocked(d))
	}
	slices.SortFunc(doubts, func(a, b doubt.Doubt) int {
		return r.before(b.ID, b.CreatedAt, a.ID, a.CreatedAt)
	})
	return pageOf(doubts, f.Page), len(doubts), nil
}

func (r doubtRepo) GetByID(_ context.Context, id string) (*doubt.Doubt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.doubts[id]
	if !ok {
		return nil, fmt.Errorf("get doubt: %w", core.ErrNotFound)
	}
	out := r.doubtViewLocked(d)
	return &out, nil
}

func (r doubtRepo) Create(_ context.Context, d *doubt.Doubt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d.CreatedAt = r.stampLocked(d.ID)
	d.UpdatedAt = d.CreatedAt
	stored := *d
	stored.Tags = slices.Clone(d.Tags)
	r.doubts[d.ID] = &stored
	return nil
}

func (r doubtRepo) Update(_ context.Context, d *doubt.Doubt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.doubts[d.ID]
	if !ok {
		return fmt.Errorf("update doubt: %w", core.ErrNotFound)
	}
	stored.Title = d.Title
	stored.Description = d.Description
	stored.Tags = slices.Clone(d.Tags)
	stored.UpdatedAt = time.Now()
	d.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r doubtRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doubts[id]; !ok {
		return fmt.Errorf("delete doubt: %w", core.ErrNotFound)
	}
	delete(r.doubts, id)
	for aid, a := range r.answers {
		if a.DoubtID == id {
			r.deleteAnswerLocked(aid)
		}
	}
	for cid, c := range r.comments {
		if c.DoubtID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

func (r doubtRepo) TransitionStatus(_ context.Context, id string, from, to domain.DoubtStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.doubts[id]
	if !ok || d.Status != from {
		return fmt.Errorf("transition doubt: %s -> %s: %w", from, to, core.ErrConflict)
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	return nil
}

func (r doubtRepo) CountByStatus(context.Context) (map[domain.DoubtStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[domain.DoubtStatus]int{
		domain.StatusPending:  0,
		domain.StatusAnswered: 0,
		domain.StatusResolved: 0,
	}
	for _, d := range r.doubts {
		counts[d.Status]++
	}
	return counts, nil
}

type answerRepo struct{ *store }

func (r answerRepo) ListByDoubt(_ context.Context, doubtID, viewerID string) ([]answer.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doubts[doubtID]; !ok {
		return nil, fmt.Errorf("list answers: %w", core.ErrNotFound)
	}

	answers := []answer.Answer{}
	for _, a := range r.answers {
		if a.DoubtID == doubtID {
			answers = append(answers, r.answerViewLocked(a, viewerID))
		}
	}
	slices.SortFunc(answers, func(a, b answer.Answer) int {
		return r.before(a.ID, a.CreatedAt, b.ID, b.CreatedAt)
	})
	return answers, nil
}

func (r answerRepo) GetByID(_ context.Context, id, viewerID string) (*answer.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.answers[id]
	if !ok {
		return nil, fmt.Errorf("get answer: %w", core.ErrNotFound)
	}
	out := r.answerViewLocked(a, viewerID)
	return &out, nil
}

// CreateAndAdvance holds the store lock across insert and status change,
// the way the row lock does in Postgres.
func (r answerRepo) CreateAndAdvance(_ context.Context, a *answer.Answer) (answer.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.doubts[a.DoubtID]
	if !ok {
		return answer.Transition{}, fmt.Errorf("create answer: lock doubt: %w", core.ErrNotFound)
	}
	t := answer.Transition{DoubtID: d.ID, From: d.Status, To: d.Status}

	r.insertAnswerLocked(a)

	count := 0
	for _, other := range r.answers {
		if other.DoubtID == d.ID {
			count++
		}
	}

	to := lifecycle.Derive(d.Status, count)
	if to != d.Status {
		if err := lifecycle.Transition(d.Status, to); err != nil {
			r.deleteAnswerLocked(a.ID)
			return answer.Transition{}, fmt.Errorf("create answer: %w", err)
		}
		d.Status = to
		d.UpdatedAt = time.Now()
		t.To = to
	}
	return t, nil
}

func (r answerRepo) insertAnswerLocked(a *answer.Answer) {
	a.CreatedAt = r.stampLocked(a.ID)
	a.UpdatedAt = a.CreatedAt
	stored := *a
	r.answers[a.ID] = &stored
}

func (r answerRepo) UpdateContent(_ context.Context, a *answer.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.answers[a.ID]
	if !ok {
		return fmt.Errorf("update answer: %w", core.ErrNotFound)
	}
	stored.Content = a.Content
	stored.UpdatedAt = time.Now()
	a.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r answerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.answers[id]; !ok {
		return fmt.Errorf("delete answer: %w", core.ErrNotFound)
	}
	r.deleteAnswerLocked(id)
	return nil
}

type commentRepo struct{ *store }

func (r commentRepo) view(c *comment.Comment) comment.Comment {
	out := *c
	out.AuthorName = r.nameLocked(c.AuthorID)
	return out
}

func (r commentRepo) ListByDoubt(_ context.Context, doubtID string) ([]comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doubts[doubtID]; !ok {
		return nil, fmt.Errorf("list comments: %w", core.ErrNotFound)
	}

	comments := []comment.Comment{}
	for _, c := range r.comments {
		if c.DoubtID == doubtID {
			comments = append(comments, r.view(c))
		}
	}
	slices.SortFunc(comments, func(a, b comment.Comment) int {
		return r.before(a.ID, a.CreatedAt, b.ID, b.CreatedAt)
	})
	return comments, nil
}

func (r commentRepo) GetByID(_ context.Context, id string) (*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	out := r.view(c)
	return &out, nil
}

func (r commentRepo) Create(_ context.Context, c *comment.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doubts[c.DoubtID]; !ok {
		return fmt.Errorf("create comment: doubt %s: %w", c.DoubtID, core.ErrNotFound)
	}
	c.CreatedAt = r.stampLocked(c.ID)
	c.UpdatedAt = c.CreatedAt
	stored := *c
	r.comments[c.ID] = &stored
	return nil
}

func (r commentRepo) UpdateContent(_ context.Context, c *comment.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.comments[c.ID]
	if !ok {
		return fmt.Errorf("update comment: %w", core.ErrNotFound)
	}
	stored.Content = c.Content
	stored.UpdatedAt = time.Now()
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r commentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return fmt.Errorf("delete comment: %w", core.ErrNotFound)
	}
	delete(r.comments, id)
	return nil
}

type voteRepo struct{ *store }

func (r voteRepo) GetByID(_ context.Context, id string) (*vote.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.votes[id]
	if !ok {
		return nil, fmt.Errorf("get upvote: %w", core.ErrNotFound)
	}
	out := *v
	return &out, nil
}

func (r voteRepo) Create(_ context.Context, v *vote.Vote) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.answers[v.AnswerID]; !ok {
		return 0, fmt.Errorf("create upvote: answer %s: %w", v.AnswerID, core.ErrNotFound)
	}
	for _, existing := range r.votes {
		if existing.AnswerID == v.AnswerID && existing.UserID == v.UserID {
			return 0, fmt.Errorf("create upvote: %w", core.ErrDuplicateKey)
		}
	}
	v.CreatedAt = r.stampLocked(v.ID)
	stored := *v
	r.votes[v.ID] = &stored
	return r.votesForLocked(v.AnswerID), nil
}

func (r voteRepo) Delete(_ context.Context, v *vote.Vote) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.votes[v.ID]; !ok {
		return 0, fmt.Errorf("delete upvote: %w", core.ErrNotFound)
	}
	delete(r.votes, v.ID)
	return r.votesForLocked(v.AnswerID), nil
}

type spaceRepo struct{ *store }

func (r spaceRepo) view(p *space.Post) space.Post {
	out := *p
	out.AuthorName = r.nameLocked(p.AuthorID)
	return out
}

func (r spaceRepo) List(_ context.Context, page core.PageParams) ([]space.Post, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts := []space.Post{}
	for _, p := range r.posts {
		posts = append(posts, r.view(p))
	}
	slices.SortFunc(posts, func(a, b space.Post) int {
		return r.before(b.ID, b.CreatedAt, a.ID, a.CreatedAt)
	})
	return pageOf(posts, page), len(posts), nil
}

func (r spaceRepo) GetByID(_ context.Context, id string) (*space.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("get space post: %w", core.ErrNotFound)
	}
	out := r.view(p)
	return &out, nil
}

func (r spaceRepo) Create(_ context.Context, p *space.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.CreatedAt = r.stampLocked(p.ID)
	stored := *p
	r.posts[p.ID] = &stored
	return nil
}

var (
	_ user.Repository    = userRepo{}
	_ doubt.Repository   = doubtRepo{}
	_ answer.Repository  = answerRepo{}
	_ comment.Repository = commentRepo{}
	_ vote.Repository    = voteRepo{}
	_ space.Repository   = spaceRepo{}
)
