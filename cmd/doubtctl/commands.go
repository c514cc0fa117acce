// AngelaMos | 2026
// commands.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
	"github.com/carterperez-dev/doubtspace/internal/submission"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "sign in with -email and -password", cmdLogin},
	{"signup", "create an account (-role junior|mentor)", cmdSignup},
	{"logout", "end the current session", cmdLogout},
	{"whoami", "show the signed-in user and their activity", cmdWhoami},
	{"doubts", "list doubts (-status, -author, -mine)", cmdDoubts},
	{"show", "show a doubt with its answers and comments", cmdShow},
	{"ask", "ask a doubt (-title, -tags, -desc)", cmdAsk},
	{"answer", "answer a doubt: answer <doubt-id> <text>", cmdAnswer},
	{"comment", "comment on a doubt: comment <doubt-id> <text>", cmdComment},
	{"resolve", "mark an answered doubt resolved", cmdResolve},
	{"upvote", "toggle your upvote: upvote <doubt-id> <answer-id>", cmdUpvote},
	{"post", "post to the junior space: post <text>", cmdPost},
	{"feed", "read the junior space feed", cmdFeed},
	{"mentors", "list approved mentors", cmdMentors},
}

var errUsage = errors.New("bad usage")

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	for _, c := range commands {
		if c.name == name {
			return c.run(ctx, a, args)
		}
	}
	return fmt.Errorf("unknown command %q: %w", name, errUsage)
}

func flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ident, err := a.store.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	a.printf("signed in as %s (%s)\n", ident.Name, ident.Role)
	return nil
}

func cmdSignup(ctx context.Context, a *app, args []string) error {
	fs := flags("signup")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", string(domain.RoleJunior), "junior or mentor")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ident, err := a.store.Signup(ctx, *name, *email, *password, domain.Role(*role))
	if err != nil {
		return err
	}
	a.printf("welcome %s, signed in as %s\n", ident.Name, ident.Role)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.printf("signed out\n")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	ident, ok := a.store.Current()
	if !ok {
		a.printf("not signed in\n")
		return nil
	}

	a.printf("%s <%s>\nrole: %s\n", ident.Name, ident.Email, ident.Role)
	if !ident.Verified {
		a.printf("token signature not verified\n")
	}

	profile, err := a.client.GetUser(ctx, ident.ID)
	if err != nil {
		return err
	}
	a.printf("doubts asked: %d\nanswers given: %d\ncomments: %d\nupvotes received: %d\n",
		profile.DoubtsAsked, profile.AnswersGiven, profile.CommentsGiven, profile.UpvotesReceived)
	return nil
}

func cmdDoubts(ctx context.Context, a *app, args []string) error {
	fs := flags("doubts")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	status := fs.String("status", "", "pending, answered or resolved")
	author := fs.String("author", "", "author id")
	mine := fs.Bool("mine", false, "only my doubts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params := domain.ListDoubtsParams{
		Page:     *page,
		Limit:    *limit,
		AuthorID: *author,
		Status:   domain.DoubtStatus(*status),
	}
	if *mine {
		ident, ok := a.store.Current()
		if !ok {
			return fmt.Errorf("-mine: not signed in: %w", access.ErrForbidden)
		}
		params.AuthorID = ident.ID
	}

	res, err := a.client.ListDoubts(ctx, params)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tANSWERS\tTITLE\tAUTHOR")
	for _, d := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d.ID, d.Status, d.AnswerCount, d.Title, d.AuthorName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printf("page %d of %d (%d doubts)\n", res.Page, res.TotalPages, res.TotalItems)
	return nil
}

func cmdShow(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show <doubt-id>: %w", errUsage)
	}

	view, err := a.engine.Refresh(ctx, args[0])
	if err != nil {
		return err
	}
	a.printView(view)
	return nil
}

func cmdAsk(ctx context.Context, a *app, args []string) error {
	fs := flags("ask")
	title := fs.String("title", "", "short summary")
	desc := fs.String("desc", "", "full description")
	tags := fs.String("tags", "", "comma separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := submission.NewDoubtForm()
	form.SetDraft(domain.DoubtInput{
		Title:       *title,
		Description: *desc,
		Tags:        strings.Split(*tags, ","),
	})

	res, err := a.pipeline.Submit(ctx, form)
	if err != nil {
		return err
	}
	a.printView(res.View)
	return nil
}

func cmdAnswer(ctx context.Context, a *app, args []string) error {
	return a.submitOnDoubt(ctx, "answer", submission.NewAnswerForm, args)
}

func cmdComment(ctx context.Context, a *app, args []string) error {
	return a.submitOnDoubt(ctx, "comment", submission.NewCommentForm, args)
}

func (a *app) submitOnDoubt(
	ctx context.Context,
	name string,
	newForm func(doubtID string) *submission.Form,
	args []string,
) error {
	if len(args) < 2 {
		return fmt.Errorf("%s <doubt-id> <text>: %w", name, errUsage)
	}

	form := newForm(args[0])
	form.SetContent(strings.Join(args[1:], " "))

	res, err := a.pipeline.Submit(ctx, form)
	if err != nil {
		return err
	}
	a.printView(res.View)
	return nil
}

func cmdResolve(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("resolve <doubt-id>: %w", errUsage)
	}
	if err := access.Check(a.store.Role(), access.ActionResolve, access.ResourceDoubt); err != nil {
		return err
	}

	status, err := a.engine.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("%s is %s\n", args[0], status)
	return nil
}

func cmdUpvote(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("upvote <doubt-id> <answer-id>: %w", errUsage)
	}
	ident, ok := a.store.Current()
	if !ok {
		return fmt.Errorf("upvote: not signed in: %w", access.ErrForbidden)
	}

	view, err := a.engine.Refresh(ctx, args[0])
	if err != nil {
		return err
	}
	found := false
	for _, ans := range view.Answers {
		a.toggler.Seed(ans)
		found = found || ans.ID == args[1]
	}
	if !found {
		return fmt.Errorf("answer %s is not on doubt %s: %w", args[1], args[0], errUsage)
	}

	state, err := a.toggler.Toggle(ctx, args[1], ident.ID)
	if err != nil {
		return err
	}

	verb := "removed"
	if state.Upvoted {
		verb = "added"
	}
	a.printf("upvote %s, %d total\n", verb, state.Count)
	return nil
}

func cmdPost(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("post <text>: %w", errUsage)
	}

	form := submission.NewSpacePostForm()
	form.SetContent(strings.Join(args, " "))

	res, err := a.pipeline.Submit(ctx, form)
	if err != nil {
		return err
	}
	if res.Feed != nil {
		a.printFeed(res.Feed)
	}
	return nil
}

func cmdFeed(ctx context.Context, a *app, args []string) error {
	fs := flags("feed")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	feed, err := a.client.ListSpacePosts(ctx, *page, *limit)
	if err != nil {
		return err
	}
	a.printFeed(feed)
	return nil
}

func cmdMentors(ctx context.Context, a *app, args []string) error {
	fs := flags("mentors")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.client.ListMentors(ctx, *page, *limit)
	if err != nil {
		return err
	}
	for _, m := range res.Items {
		a.printf("%s\t%s\n", m.ID, m.Name)
	}
	return nil
}

func (a *app) printView(v *lifecycle.View) {
	if v == nil {
		return
	}
	d := v.Doubt
	a.printf("%s [%s] %s\n", d.ID, d.Status, d.Title)
	a.printf("by %s, tags: %s\n\n%s\n", d.AuthorName, strings.Join(d.Tags, ", "), d.Description)

	if len(v.Answers) > 0 {
		a.printf("\nanswers (%d):\n", len(v.Answers))
		for _, ans := range v.Answers {
			mark := " "
			if ans.ViewerUpvoteID != "" {
				mark = "*"
			}
			a.printf("%s %s  +%d  %s: %s\n", mark, ans.ID, ans.UpvoteCount, ans.MentorName, ans.Content)
		}
	}

	if len(v.Comments) > 0 {
		a.printf("\ncomments (%d):\n", len(v.Comments))
		for _, c := range v.Comments {
			a.printf("  %s: %s\n", c.AuthorName, c.Content)
		}
	}
}

func (a *app) printFeed(feed *domain.Page[domain.SpacePost]) {
	for _, p := range feed.Items {
		a.printf("%s  %s: %s\n", p.CreatedAt.Format(time.DateTime), p.AuthorName, p.Content)
	}
	a.printf("page %d of %d\n", feed.Page, feed.TotalPages)
}
