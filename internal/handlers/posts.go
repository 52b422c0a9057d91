package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/discuss/backend/internal/discussion"
	"github.com/emilythestrangee/discuss/backend/internal/models"
)

type PostHandler struct {
	content ContentService
}

func NewPostHandler(content ContentService) *PostHandler {
	return &PostHandler{content: content}
}

// GetPosts lists recent posts across the caller's teams
func (h *PostHandler) GetPosts(c *gin.Context) {
	viewer, ok := requireUser(c)
	if !ok {
		return
	}

	posts, err := h.content.ListPosts(c.Request.Context(), viewer, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetTeamPosts lists recent posts in one team
func (h *PostHandler) GetTeamPosts(c *gin.Context) {
	viewer, ok := requireUser(c)
	if !ok {
		return
	}
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}

	posts, err := h.content.ListPosts(c.Request.Context(), viewer, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post with its comment tree
func (h *PostHandler) GetPost(c *gin.Context) {
	viewer, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	post, err := h.content.GetPost(c.Request.Context(), viewer, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post in a team
func (h *PostHandler) CreatePost(c *gin.Context) {
	author, ok := requireUser(c)
	if !ok {
		return
	}
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.content.CreatePost(c.Request.Context(), author, discussion.NewPost{
		TeamID: teamID,
		Title:  input.Title,
		Body:   input.Body,
		Type:   input.PostType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPostForEdit returns the caller's own post ready for the editor
func (h *PostHandler) GetPostForEdit(c *gin.Context) {
	editor, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	post, err := h.content.PostForEdit(c.Request.Context(), editor, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost updates an existing post (author only)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	editor, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.UpdatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.content.EditPost(c.Request.Context(), editor, postID, discussion.PostEdit{
		Title: input.Title,
		Body:  input.Body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
