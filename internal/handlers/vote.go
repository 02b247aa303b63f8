package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

// Vote is POST /post/:id/vote. The body is JSON {"vote_type":"up"|"down"};
// a form field "value" of 1/-1 is accepted as a fallback. Re-sending the
// same direction toggles the vote off.
func (h *VoteHandler) Vote(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	postID := uint(utils.StringToInt(c.Param("id")))

	// The body can only be parsed once, so pick the decoder by content
	// type instead of falling through after a failed JSON bind.
	direction := ""
	if c.ContentType() == "application/json" {
		var req voteRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			direction = req.VoteType
		}
	} else {
		switch c.PostForm("value") {
		case "1":
			direction = services.DirectionUp
		case "-1":
			direction = services.DirectionDown
		}
	}

	upvotes, downvotes, err := services.CastVote(user.ID, postID, direction)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upvotes": upvotes, "downvotes": downvotes})
}
