package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/discuss/backend/internal/models"
)

type CommentHandler struct {
	content ContentService
}

func NewCommentHandler(content ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

func bindComment(c *gin.Context) (string, bool) {
	var input models.CommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return input.Body, true
}

// CreateComment adds a top-level comment to a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	author, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	body, ok := bindComment(c)
	if !ok {
		return
	}

	comment, err := h.content.AddComment(c.Request.Context(), author, postID, body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ReplyToComment appends a reply under an existing comment
func (h *CommentHandler) ReplyToComment(c *gin.Context) {
	author, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	body, ok := bindComment(c)
	if !ok {
		return
	}

	reply, err := h.content.Reply(c.Request.Context(), author, commentID, body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// GetCommentForEdit returns the caller's own comment ready for the editor
func (h *CommentHandler) GetCommentForEdit(c *gin.Context) {
	editor, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}

	comment, err := h.content.CommentForEdit(c.Request.Context(), editor, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// UpdateComment updates a comment (author only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	editor, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	body, ok := bindComment(c)
	if !ok {
		return
	}

	comment, err := h.content.EditComment(c.Request.Context(), editor, commentID, body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
