// AngelaMos | 2026
// form.go

package submission

import (
	"sync"
	"sync/atomic"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Kind int

const (
	KindAnswer Kind = iota
	KindComment
	KindDoubt
	KindSpacePost
)

func (k Kind) String() string {
	switch k {
	case KindAnswer:
		return "answer"
	case KindComment:
		return "comment"
	case KindDoubt:
		return "doubt"
	case KindSpacePost:
		return "space_post"
	default:
		return "unknown"
	}
}

func (k Kind) resource() access.Resource {
	switch k {
	case KindAnswer:
		return access.ResourceAnswer
	case KindComment:
		return access.ResourceComment
	case KindDoubt:
		return access.ResourceDoubt
	case KindSpacePost:
		return access.ResourceSpacePost
	default:
		return ""
	}
}

type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
)

// Form is one logical input surface. At most one submission per form is in
// flight at a time.
type Form struct {
	kind    Kind
	doubtID string

	inFlight atomic.Bool

	mu      sync.Mutex
	content string
	draft   domain.DoubtInput
}

func NewAnswerForm(doubtID string) *Form {
	return &Form{kind: KindAnswer, doubtID: doubtID}
}

func NewCommentForm(doubtID string) *Form {
	return &Form{kind: KindComment, doubtID: doubtID}
}

func NewDoubtForm() *Form {
	return &Form{kind: KindDoubt}
}

func NewSpacePostForm() *Form {
	return &Form{kind: KindSpacePost}
}

func (f *Form) Kind() Kind { return f.kind }

func (f *Form) DoubtID() string { return f.doubtID }

func (f *Form) Status() Status {
	if f.inFlight.Load() {
		return StatusInFlight
	}
	return StatusIdle
}

// SetContent sets the body text. For doubt forms it is the description.
func (f *Form) SetContent(s string) {
	f.mu.Lock()
	f.content = s
	f.draft.Description = s
	f.mu.Unlock()
}

func (f *Form) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

// SetDraft fills a doubt form.
func (f *Form) SetDraft(in domain.DoubtInput) {
	f.mu.Lock()
	f.draft = domain.DoubtInput{
		Title:       in.Title,
		Description: in.Description,
		Tags:        append([]string(nil), in.Tags...),
	}
	f.content = in.Description
	f.mu.Unlock()
}

func (f *Form) Draft() domain.DoubtInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.DoubtInput{
		Title:       f.draft.Title,
		Description: f.draft.Description,
		Tags:        append([]string(nil), f.draft.Tags...),
	}
}

func (f *Form) clear() {
	f.mu.Lock()
	f.content = ""
	f.draft = domain.DoubtInput{}
	f.mu.Unlock()
}
