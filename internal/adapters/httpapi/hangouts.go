package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hangout/internal/ports/input"
)

type createHangoutReq struct {
	Title                       string `json:"title" binding:"required"`
	Description                 string `json:"description"`
	ConsensusThreshold          int    `json:"consensus_threshold"`
	AllowParticipantSuggestions bool   `json:"allow_participant_suggestions"`
}

func (s *Server) createHangout(c *gin.Context) {
	var req createHangoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	h, err := s.svc.Hangouts.CreateHangout(c.Request.Context(), participant(c), input.CreateHangoutInput{
		Title:                       req.Title,
		Description:                 req.Description,
		ConsensusThreshold:          req.ConsensusThreshold,
		AllowParticipantSuggestions: req.AllowParticipantSuggestions,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHangout(*h))
}

func (s *Server) getHangout(c *gin.Context) {
	h, err := s.svc.Hangouts.GetHangout(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHangout(*h))
}

// status is the poll endpoint clients refresh to render live tallies.
func (s *Server) status(c *gin.Context) {
	st, err := s.svc.Status.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatus(st))
}

type openVotingReq struct {
	EndsAt *time.Time `json:"ends_at"`
}

func (s *Server) openVoting(c *gin.Context) {
	var req openVotingReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
	}
	h, err := s.svc.Hangouts.OpenVoting(c.Request.Context(), c.Param("id"), participant(c), req.EndsAt)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHangout(*h))
}

func (s *Server) endVoting(c *gin.Context) {
	res, err := s.svc.Resolution.EndVoting(c.Request.Context(), c.Param("id"), participant(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResolution(res))
}

// resolve is safe to call speculatively: before the deadline it reports
// NOT_APPLICABLE without writing anything.
func (s *Server) resolve(c *gin.Context) {
	res, err := s.svc.Resolution.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResolution(res))
}

func (s *Server) cancel(c *gin.Context) {
	h, err := s.svc.Hangouts.CancelHangout(c.Request.Context(), c.Param("id"), participant(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHangout(*h))
}

func (s *Server) complete(c *gin.Context) {
	h, err := s.svc.Hangouts.CompleteHangout(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHangout(*h))
}
