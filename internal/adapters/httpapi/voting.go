package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type addOptionReq struct {
	ActivityRef string `json:"activity_ref" binding:"required"`
	DisplayName string `json:"display_name"`
}

func (s *Server) addOption(c *gin.Context) {
	var req addOptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	opt, err := s.svc.Options.AddOption(c.Request.Context(), c.Param("id"), req.ActivityRef, req.DisplayName, participant(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOption(*opt))
}

func (s *Server) listOptions(c *gin.Context) {
	options, err := s.svc.Options.ListOptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	data := make([]optionJSON, 0, len(options))
	for _, o := range options {
		data = append(data, toOption(o))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

type addTimeOptionReq struct {
	StartsAt time.Time  `json:"starts_at" binding:"required"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (s *Server) addTimeOption(c *gin.Context) {
	var req addTimeOptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	opt, err := s.svc.Options.AddTimeOption(c.Request.Context(), c.Param("id"), req.StartsAt, req.EndsAt, participant(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTimeOption(*opt))
}

func (s *Server) listTimeOptions(c *gin.Context) {
	options, err := s.svc.Options.ListTimeOptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	data := make([]timeOptionJSON, 0, len(options))
	for _, o := range options {
		data = append(data, toTimeOption(o))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// A value of 0 withdraws the caller's vote.
type castVoteReq struct {
	Value *int `json:"value" binding:"required"`
}

func (s *Server) castVote(c *gin.Context) {
	var req castVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.svc.Votes.CastVote(c.Request.Context(), c.Param("optionId"), participant(c), *req.Value); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) castTimeVote(c *gin.Context) {
	var req castVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.svc.Votes.CastTimeVote(c.Request.Context(), c.Param("optionId"), participant(c), *req.Value); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) tally(c *gin.Context) {
	ctx := c.Request.Context()
	activities, err := s.svc.Votes.Tally(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	times, err := s.svc.Votes.TallyTime(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": activities, "time_options": times})
}
