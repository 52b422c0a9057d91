package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	teams TeamService
}

func NewTeamHandler(teams TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// CreateTeam creates a team; the caller becomes its first member
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	creator, ok := requireUser(c)
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team name is required"})
		return
	}

	team, err := h.teams.CreateTeam(c.Request.Context(), creator, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// GetMyTeams lists the caller's teams
func (h *TeamHandler) GetMyTeams(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	teams, err := h.teams.MyTeams(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// GetMembers lists the members of a team the caller belongs to
func (h *TeamHandler) GetMembers(c *gin.Context) {
	viewer, ok := requireUser(c)
	if !ok {
		return
	}
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}

	members, err := h.teams.Members(c.Request.Context(), viewer, teamID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, len(members))
	for i, m := range members {
		out[i] = gin.H{"id": m.ID, "username": m.Username, "avatar": m.Avatar}
	}
	c.JSON(http.StatusOK, out)
}

// AddMember adds a user to a team the caller belongs to
func (h *TeamHandler) AddMember(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if err := h.teams.AddMember(c.Request.Context(), actor, teamID, input.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member added"})
}
