package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/discuss/backend/internal/discussion"
	"github.com/emilythestrangee/discuss/backend/internal/middleware"
	"github.com/emilythestrangee/discuss/backend/internal/models"
	"github.com/emilythestrangee/discuss/backend/internal/storage"
)

// ContentService creates, edits and reads posts and comments.
type ContentService interface {
	CreatePost(ctx context.Context, author int, in discussion.NewPost) (*models.Post, error)
	EditPost(ctx context.Context, editor, postID int, in discussion.PostEdit) (*models.Post, error)
	PostForEdit(ctx context.Context, editor, postID int) (*models.Post, error)
	GetPost(ctx context.Context, viewer, postID int) (*discussion.PostDetails, error)
	ListPosts(ctx context.Context, viewer, teamID int) ([]discussion.PostSummary, error)
	AddComment(ctx context.Context, author, postID int, body string) (*models.Comment, error)
	Reply(ctx context.Context, author, commentID int, body string) (*models.Comment, error)
	EditComment(ctx context.Context, editor, commentID int, body string) (*models.Comment, error)
	CommentForEdit(ctx context.Context, editor, commentID int) (*models.Comment, error)
}

// VoteLedger casts votes and reads tallies.
type VoteLedger interface {
	Cast(ctx context.Context, voter int, target discussion.Target, dir discussion.Direction) (discussion.CastResult, error)
	TallyFor(ctx context.Context, viewer int, target discussion.Target) (discussion.Tally, error)
}

type TeamService interface {
	CreateTeam(ctx context.Context, creator int, name string) (*models.Team, error)
	AddMember(ctx context.Context, actor, teamID, userID int) error
	Members(ctx context.Context, viewer, teamID int) ([]models.User, error)
	MyTeams(ctx context.Context, userID int) ([]models.Team, error)
}

type FileUploader interface {
	Upload(ctx context.Context, userID int, filename string, r io.Reader, size int64) (string, error)
}

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	Vote    *VoteHandler
	Team    *TeamHandler
	Upload  *UploadHandler
	User    *UserHandler
}

type Deps struct {
	DB       *gorm.DB
	Issuer   *middleware.TokenIssuer
	Content  ContentService
	Ledger   VoteLedger
	Teams    TeamService
	Uploader FileUploader // nil when no object store is configured
	Log      *slog.Logger
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(d.DB, d.Issuer),
		Post:    NewPostHandler(d.Content),
		Comment: NewCommentHandler(d.Content),
		Vote:    NewVoteHandler(d.Ledger),
		Team:    NewTeamHandler(d.Teams),
		Upload:  NewUploadHandler(d.Uploader, d.Log),
		User:    NewUserHandler(d.DB),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(int)
	return userID, ok
}

// requireUser writes a 401 and returns false when the request has no actor.
func requireUser(c *gin.Context) (int, bool) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return userID, ok
}

// paramID parses a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// respondError maps domain failures onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, discussion.ErrValidation), errors.Is(err, storage.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, discussion.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, discussion.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
