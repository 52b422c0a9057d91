package discussion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/discuss/backend/internal/models"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.content.CreatePost(ctx, f.bob, NewPost{
		TeamID: f.team,
		Title:  "  Release Notes ",
		Body:   "<h2>Hi</h2>",
		Type:   models.PostAnnouncement,
	})
	require.NoError(t, err)

	assert.Equal(t, "Release Notes", post.Title)
	assert.Equal(t, "release-notes", post.Slug)
	assert.Equal(t, models.PostAnnouncement, post.PostType)
	assert.Equal(t, "bob", post.Author.Username)
	assert.Equal(t, "<h2>Hi</h2>", post.Body, "stored body is not normalized")
	assert.Nil(t, post.EditedAt)
	assert.Zero(t, post.Upvotes)
}

func TestCreatePostDefaultsToDiscussion(t *testing.T) {
	f := newFixture(t)
	post := f.post(t, f.alice, "body")
	assert.Equal(t, models.PostDiscussion, post.PostType)
}

func TestCreatePostRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		author int
		in     NewPost
		want   error
	}{
		{"blank body", f.bob, NewPost{TeamID: f.team, Title: "t", Body: "<p> &nbsp; </p>"}, ErrValidation},
		{"empty title", f.bob, NewPost{TeamID: f.team, Title: "  ", Body: "x"}, ErrValidation},
		{"unknown type", f.bob, NewPost{TeamID: f.team, Title: "t", Body: "x", Type: "poll"}, ErrValidation},
		{"not a member", f.outsider, NewPost{TeamID: f.team, Title: "t", Body: "x"}, ErrPermission},
		{"unknown team", f.bob, NewPost{TeamID: 777, Title: "t", Body: "x"}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.content.CreatePost(ctx, tc.author, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&models.Post{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEditPostKeepsVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "first draft")

	_, err := f.ledger.Cast(ctx, f.bob, PostTarget(p.ID), Up)
	require.NoError(t, err)
	_, err = f.ledger.Cast(ctx, f.carol, PostTarget(p.ID), Down)
	require.NoError(t, err)

	_, err = f.content.EditPost(ctx, f.bob, p.ID, PostEdit{Title: "hijack", Body: "mine now"})
	assert.ErrorIs(t, err, ErrPermission)

	_, err = f.content.EditPost(ctx, f.alice, p.ID, PostEdit{Title: "Hello", Body: "<div></div>"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.content.EditPost(ctx, f.alice, 999, PostEdit{Title: "Hello", Body: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	edited, err := f.content.EditPost(ctx, f.alice, p.ID, PostEdit{Title: "Second Draft", Body: "second draft"})
	require.NoError(t, err)
	assert.Equal(t, "second draft", edited.Body)
	assert.Equal(t, "second-draft", edited.Slug)
	require.NotNil(t, edited.EditedAt)
	assert.Equal(t, 1, edited.Upvotes)
	assert.Equal(t, 1, edited.Downvotes)
}

func TestCommentsAndReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "topic")

	c1, err := f.content.AddComment(ctx, f.bob, p.ID, "first")
	require.NoError(t, err)
	c2, err := f.content.AddComment(ctx, f.carol, p.ID, "second")
	require.NoError(t, err)
	r1, err := f.content.Reply(ctx, f.alice, c1.ID, "reply one")
	require.NoError(t, err)
	r2, err := f.content.Reply(ctx, f.carol, c1.ID, "reply two")
	require.NoError(t, err)
	rr, err := f.content.Reply(ctx, f.bob, r1.ID, "nested")
	require.NoError(t, err)

	assert.Nil(t, c1.ParentID)
	require.NotNil(t, r1.ParentID)
	assert.Equal(t, c1.ID, *r1.ParentID)
	assert.Equal(t, p.ID, rr.PostID)

	_, err = f.ledger.Cast(ctx, f.carol, CommentTarget(c1.ID), Up)
	require.NoError(t, err)

	details, err := f.content.GetPost(ctx, f.carol, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, details.CommentCount)

	require.Len(t, details.Comments, 2)
	assert.Equal(t, c1.ID, details.Comments[0].ID)
	assert.Equal(t, Up, details.Comments[0].MyVote)
	assert.Equal(t, c2.ID, details.Comments[1].ID)

	replies := details.Comments[0].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, r1.ID, replies[0].ID)
	assert.Equal(t, r2.ID, replies[1].ID)
	require.Len(t, replies[0].Replies, 1)
	assert.Equal(t, rr.ID, replies[0].Replies[0].ID)
	assert.Equal(t, "bob", replies[0].Replies[0].Author.Username)
}

func TestCommentRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "topic")
	c, err := f.content.AddComment(ctx, f.bob, p.ID, "hello")
	require.NoError(t, err)

	_, err = f.content.AddComment(ctx, f.bob, p.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.content.AddComment(ctx, f.outsider, p.ID, "let me in")
	assert.ErrorIs(t, err, ErrPermission)
	_, err = f.content.AddComment(ctx, f.bob, 999, "where")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.content.Reply(ctx, f.bob, 999, "where")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.content.Reply(ctx, f.outsider, c.ID, "let me in")
	assert.ErrorIs(t, err, ErrPermission)

	_, err = f.content.GetPost(ctx, f.outsider, p.ID)
	assert.ErrorIs(t, err, ErrPermission)
}

func TestEditComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "topic")
	c, err := f.content.AddComment(ctx, f.bob, p.ID, "<h3>Old</h3>")
	require.NoError(t, err)
	_, err = f.ledger.Cast(ctx, f.alice, CommentTarget(c.ID), Up)
	require.NoError(t, err)

	_, err = f.content.EditComment(ctx, f.alice, c.ID, "not yours")
	assert.ErrorIs(t, err, ErrPermission)
	_, err = f.content.CommentForEdit(ctx, f.alice, c.ID)
	assert.ErrorIs(t, err, ErrPermission)

	form, err := f.content.CommentForEdit(ctx, f.bob, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Old</h1>", form.Body)

	edited, err := f.content.EditComment(ctx, f.bob, c.ID, "<h1>New</h1>")
	require.NoError(t, err)
	assert.Equal(t, "<h1>New</h1>", edited.Body)
	require.NotNil(t, edited.EditedAt)
	assert.Equal(t, 1, edited.Upvotes)
}

func TestPostForEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "<h2>Hi</h2><p>text</p>")

	form, err := f.content.PostForEdit(ctx, f.alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1><p>text</p>", form.Body)

	_, err = f.content.PostForEdit(ctx, f.bob, p.ID)
	assert.ErrorIs(t, err, ErrPermission)
}

func TestListPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.teams.CreateTeam(ctx, f.outsider, "elsewhere")
	require.NoError(t, err)
	_, err = f.content.CreatePost(ctx, f.outsider, NewPost{TeamID: other.ID, Title: "hidden", Body: "x"})
	require.NoError(t, err)

	older := f.post(t, f.alice, "older")
	newer := f.post(t, f.alice, "newer")
	_, err = f.ledger.Cast(ctx, f.bob, PostTarget(older.ID), Down)
	require.NoError(t, err)

	posts, err := f.content.ListPosts(ctx, f.bob, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, None, posts[0].MyVote)
	assert.Equal(t, older.ID, posts[1].ID)
	assert.Equal(t, Down, posts[1].MyVote)

	inTeam, err := f.content.ListPosts(ctx, f.bob, f.team)
	require.NoError(t, err)
	assert.Len(t, inTeam, 2)

	_, err = f.content.ListPosts(ctx, f.bob, other.ID)
	assert.ErrorIs(t, err, ErrPermission)

	none, err := f.content.ListPosts(ctx, f.user(t, "newcomer"), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTeams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.teams.CreateTeam(ctx, f.bob, "core")
	assert.ErrorIs(t, err, ErrValidation, "duplicate name")
	_, err = f.teams.CreateTeam(ctx, f.bob, " ")
	assert.ErrorIs(t, err, ErrValidation)

	err = f.teams.AddMember(ctx, f.outsider, f.team, f.outsider)
	assert.ErrorIs(t, err, ErrPermission)
	err = f.teams.AddMember(ctx, f.alice, f.team, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, f.teams.AddMember(ctx, f.alice, f.team, f.bob), "re-adding is a no-op")

	design, err := f.teams.CreateTeam(ctx, f.bob, "design")
	require.NoError(t, err)

	teams, err := f.teams.MyTeams(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "core", teams[0].Name)
	assert.Equal(t, design.ID, teams[1].ID)

	assert.NoError(t, f.teams.CheckViewPermission(ctx, f.carol, f.team))
	assert.ErrorIs(t, f.teams.CheckViewPermission(ctx, f.carol, design.ID), ErrPermission)
	assert.ErrorIs(t, f.teams.CheckViewPermission(ctx, f.carol, 12345), ErrNotFound)
}

func TestTeamMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	members, err := f.teams.Members(ctx, f.carol, f.team)
	require.NoError(t, err)
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Username
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)

	_, err = f.teams.Members(ctx, f.outsider, f.team)
	assert.ErrorIs(t, err, ErrPermission)
	_, err = f.teams.Members(ctx, f.carol, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
