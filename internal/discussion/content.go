package discussion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/emilythestrangee/discuss/backend/internal/models"
)

type NewPost struct {
	TeamID int
	Title  string
	Body   string
	Type   models.PostType
}

type PostEdit struct {
	Title string
	Body  string
}

// PostSummary is a post as it appears in a listing.
type PostSummary struct {
	models.Post
	MyVote Direction `json:"my_vote"`
}

// PostDetails is a post with its whole comment tree.
type PostDetails struct {
	models.Post
	MyVote   Direction `json:"my_vote"`
	Comments []*Thread `json:"comments"`
}

// Content creates, edits and reads posts and comments. Every operation takes
// the acting user explicitly.
type Content struct {
	db     *gorm.DB
	gate   ViewGate
	teams  *Teams
	ledger *Ledger
	log    *slog.Logger
	now    func() time.Time
}

func NewContent(db *gorm.DB, teams *Teams, ledger *Ledger, log *slog.Logger) *Content {
	return &Content{
		db:     db,
		gate:   teams,
		teams:  teams,
		ledger: ledger,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func validateBody(body string) error {
	if IsBlank(body) {
		return fmt.Errorf("%w: body cannot be empty", ErrValidation)
	}
	return nil
}

func postMissing(id int) error    { return fmt.Errorf("%w: post %d", ErrNotFound, id) }
func commentMissing(id int) error { return fmt.Errorf("%w: comment %d", ErrNotFound, id) }

// CreatePost starts a new discussion in a team the author can see.
func (s *Content) CreatePost(ctx context.Context, author int, in NewPost) (*models.Post, error) {
	if in.Type == "" {
		in.Type = models.PostDiscussion
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid post type %q", ErrValidation, in.Type)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if err := validateBody(in.Body); err != nil {
		return nil, err
	}
	if err := s.gate.CheckViewPermission(ctx, author, in.TeamID); err != nil {
		return nil, err
	}

	post := models.Post{
		TeamID:   in.TeamID,
		AuthorID: author,
		PostType: in.Type,
		Title:    title,
		Slug:     slug.Make(title),
		Body:     in.Body,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}

	s.log.Info("post created", "post_id", post.ID, "team_id", post.TeamID, "author", author)
	return s.loadPost(ctx, post.ID)
}

// EditPost replaces the title and body of the editor's own post. Vote
// counters are not written.
func (s *Content) EditPost(ctx context.Context, editor, postID int, in PostEdit) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if err := validateBody(in.Body); err != nil {
		return nil, err
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Take(&post, postID).Error; err != nil {
		return nil, notFound(err, postMissing(postID))
	}
	if post.AuthorID != editor {
		return nil, fmt.Errorf("%w: only the author can edit this post", ErrPermission)
	}

	now := s.now()
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		Select("title", "slug", "body", "edited_at", "updated_at").
		Updates(models.Post{Title: title, Slug: slug.Make(title), Body: in.Body, EditedAt: &now, UpdatedAt: now}).Error
	if err != nil {
		return nil, err
	}
	return s.loadPost(ctx, postID)
}

// AddComment adds a top-level comment to a post.
func (s *Content) AddComment(ctx context.Context, author, postID int, body string) (*models.Comment, error) {
	return s.createComment(ctx, author, postID, nil, body)
}

// Reply appends a reply beneath an existing comment on the same post.
func (s *Content) Reply(ctx context.Context, author, commentID int, body string) (*models.Comment, error) {
	var parent models.Comment
	if err := s.db.WithContext(ctx).Select("id", "post_id").Take(&parent, commentID).Error; err != nil {
		return nil, notFound(err, commentMissing(commentID))
	}
	return s.createComment(ctx, author, parent.PostID, &parent.ID, body)
}

func (s *Content) createComment(ctx context.Context, author, postID int, parentID *int, body string) (*models.Comment, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Select("id", "team_id").Take(&post, postID).Error; err != nil {
		return nil, notFound(err, postMissing(postID))
	}
	if err := s.gate.CheckViewPermission(ctx, author, post.TeamID); err != nil {
		return nil, err
	}

	comment := models.Comment{PostID: postID, ParentID: parentID, AuthorID: author, Body: body}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("comment created", "comment_id", comment.ID, "post_id", postID, "author", author)
	return s.loadComment(ctx, comment.ID)
}

// EditComment replaces the body of the editor's own comment. Vote counters
// are not written.
func (s *Content) EditComment(ctx context.Context, editor, commentID int, body string) (*models.Comment, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).Take(&comment, commentID).Error; err != nil {
		return nil, notFound(err, commentMissing(commentID))
	}
	if comment.AuthorID != editor {
		return nil, fmt.Errorf("%w: only the author can edit this comment", ErrPermission)
	}

	now := s.now()
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", commentID).
		Select("body", "edited_at", "updated_at").
		Updates(models.Comment{Body: body, EditedAt: &now, UpdatedAt: now}).Error
	if err != nil {
		return nil, err
	}
	return s.loadComment(ctx, commentID)
}

// PostForEdit returns the editor's own post with its body prepared for the
// rich-text editor.
func (s *Content) PostForEdit(ctx context.Context, editor, postID int) (*models.Post, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editor {
		return nil, fmt.Errorf("%w: only the author can edit this post", ErrPermission)
	}
	post.Body = NormalizeForEdit(post.Body)
	return post, nil
}

// CommentForEdit is PostForEdit for comments.
func (s *Content) CommentForEdit(ctx context.Context, editor, commentID int) (*models.Comment, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != editor {
		return nil, fmt.Errorf("%w: only the author can edit this comment", ErrPermission)
	}
	comment.Body = NormalizeForEdit(comment.Body)
	return comment, nil
}

// GetPost returns a post, the viewer's vote on it and its comment tree.
func (s *Content) GetPost(ctx context.Context, viewer, postID int) (*PostDetails, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckViewPermission(ctx, viewer, post.TeamID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").Where("post_id = ?", postID).Order("id").Find(&comments).Error; err != nil {
		return nil, err
	}

	postVotes, err := s.ledger.MyVotes(ctx, viewer, models.TargetPost, []int{postID})
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	commentVotes, err := s.ledger.MyVotes(ctx, viewer, models.TargetComment, ids)
	if err != nil {
		return nil, err
	}

	return &PostDetails{
		Post:     *post,
		MyVote:   postVotes[postID],
		Comments: BuildThreads(comments, commentVotes),
	}, nil
}

// ListPosts returns the newest posts the viewer can see, each with the
// viewer's vote. A zero teamID lists across all of the viewer's teams.
func (s *Content) ListPosts(ctx context.Context, viewer, teamID int) ([]PostSummary, error) {
	q := s.db.WithContext(ctx).Preload("Author").Order("created_at desc, id desc").Limit(100)
	if teamID != 0 {
		if err := s.gate.CheckViewPermission(ctx, viewer, teamID); err != nil {
			return nil, err
		}
		q = q.Where("team_id = ?", teamID)
	} else {
		teamIDs, err := s.teams.teamIDs(ctx, viewer)
		if err != nil {
			return nil, err
		}
		if len(teamIDs) == 0 {
			return []PostSummary{}, nil
		}
		q = q.Where("team_id IN ?", teamIDs)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}

	ids := make([]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	votes, err := s.ledger.MyVotes(ctx, viewer, models.TargetPost, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{Post: p, MyVote: votes[p.ID]}
	}
	return out, nil
}

func (s *Content) loadPost(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Take(&post, id).Error; err != nil {
		return nil, notFound(err, postMissing(id))
	}
	return &post, nil
}

func (s *Content) loadComment(ctx context.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").Take(&comment, id).Error; err != nil {
		return nil, notFound(err, commentMissing(id))
	}
	return &comment, nil
}
