package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

func (s *Server) me(c *gin.Context) {
	identity, err := s.svc.Identity.Lookup(c.Request.Context(), participant(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": toParticipant(identity.Ref()), "display_name": identity.Name()})
}

type rsvpReq struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) setRsvp(c *gin.Context) {
	var req rsvpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	m, err := s.svc.Rsvp.SetRsvp(c.Request.Context(), c.Param("id"), participant(c), parseRsvp(req.Status))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMembership(*m))
}

func (s *Server) rsvpSummary(c *gin.Context) {
	summary, err := s.svc.Rsvp.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rsvpJSON(summary))
}

func (s *Server) listMembers(c *gin.Context) {
	members, err := s.svc.Memberships.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	data := make([]membershipJSON, 0, len(members))
	for _, m := range members {
		data = append(data, toMembership(m))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// addMemberReq adds the caller when Participant is omitted.
type addMemberReq struct {
	Participant *participantJSON `json:"participant"`
	Rsvp        string           `json:"rsvp"`
}

func (s *Server) addMember(c *gin.Context) {
	var req addMemberReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
	}
	ctx := c.Request.Context()
	who := participant(c)
	if req.Participant != nil && req.Participant.ref() != who {
		h, err := s.svc.Hangouts.GetHangout(ctx, c.Param("id"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		if !h.IsCreator(who) {
			s.writeError(c, domain.ErrNotCreator)
			return
		}
		who = req.Participant.ref()
	}
	m, err := s.svc.Memberships.Join(ctx, c.Param("id"), who, entities.RoleMember, parseRsvp(req.Rsvp))
	switch {
	case errors.Is(err, domain.ErrAlreadyMember):
		c.JSON(http.StatusOK, toMembership(*m))
	case err != nil:
		s.writeError(c, err)
	default:
		c.JSON(http.StatusCreated, toMembership(*m))
	}
}

func (s *Server) leave(c *gin.Context) {
	if err := s.svc.Memberships.Leave(c.Request.Context(), c.Param("id"), participant(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeMember(c *gin.Context) {
	m, err := s.svc.Memberships.Remove(c.Request.Context(), c.Param("membershipId"), participant(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMembership(*m))
}

type mandatoryReq struct {
	Mandatory bool `json:"mandatory"`
}

func (s *Server) setMandatory(c *gin.Context) {
	var req mandatoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	m, err := s.svc.Memberships.SetMandatory(c.Request.Context(), c.Param("membershipId"), participant(c), req.Mandatory)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMembership(*m))
}

// parseRsvp normalizes case; anything unrecognized is passed through so the
// engine reports it as an invalid RSVP.
func parseRsvp(label string) entities.RsvpStatus {
	if status, ok := entities.ParseRsvp(label); ok {
		return status
	}
	return entities.RsvpStatus(label)
}
