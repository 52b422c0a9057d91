package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/discuss/backend/internal/discussion"
)

type VoteHandler struct {
	ledger VoteLedger
}

func NewVoteHandler(ledger VoteLedger) *VoteHandler {
	return &VoteHandler{ledger: ledger}
}

func (h *VoteHandler) cast(c *gin.Context, param string, target func(int) discussion.Target, dir discussion.Direction) {
	voter, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, param)
	if !ok {
		return
	}

	result, err := h.ledger.Cast(c.Request.Context(), voter, target(id), dir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VoteHandler) tally(c *gin.Context, param string, target func(int) discussion.Target) {
	viewer, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, param)
	if !ok {
		return
	}

	tally, err := h.ledger.TallyFor(c.Request.Context(), viewer, target(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

// VotePost handles {"vote_type": 1 | -1} on a post. Repeating a vote removes
// it; the opposite vote replaces it.
func (h *VoteHandler) VotePost(c *gin.Context) {
	var input struct {
		VoteType int `json:"vote_type" binding:"required,oneof=-1 1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be -1 or 1"})
		return
	}
	h.cast(c, "id", discussion.PostTarget, discussion.Direction(input.VoteType))
}

func (h *VoteHandler) UpvotePost(c *gin.Context) {
	h.cast(c, "id", discussion.PostTarget, discussion.Up)
}

func (h *VoteHandler) DownvotePost(c *gin.Context) {
	h.cast(c, "id", discussion.PostTarget, discussion.Down)
}

func (h *VoteHandler) UpvoteComment(c *gin.Context) {
	h.cast(c, "commentId", discussion.CommentTarget, discussion.Up)
}

func (h *VoteHandler) DownvoteComment(c *gin.Context) {
	h.cast(c, "commentId", discussion.CommentTarget, discussion.Down)
}

func (h *VoteHandler) PostTally(c *gin.Context) {
	h.tally(c, "id", discussion.PostTarget)
}

func (h *VoteHandler) CommentTally(c *gin.Context) {
	h.tally(c, "commentId", discussion.CommentTarget)
}
