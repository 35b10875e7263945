package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

func (s *Server) inviteToken(c *gin.Context) {
	token, err := s.svc.Invites.GetOrCreateInviteToken(c.Request.Context(), c.Param("id"), participant(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type guestJoinReq struct {
	DisplayName string `json:"display_name" binding:"required"`
	Rsvp        string `json:"rsvp"`
}

// joinAsGuest is unauthenticated: the invite token is the credential. A
// replay with the same Idempotency-Key answers 200 with the first result.
func (s *Server) joinAsGuest(c *gin.Context) {
	var req guestJoinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	join, err := s.svc.Invites.JoinAsGuest(c.Request.Context(), c.Param("token"), req.DisplayName,
		parseRsvp(req.Rsvp), c.GetHeader(idempotencyHeader))
	if err != nil {
		s.writeError(c, err)
		return
	}
	status := http.StatusCreated
	if join.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"guest_id":   join.Guest.ID,
		"token":      join.Guest.Token,
		"expires_at": join.Guest.ExpiresAt,
		"membership": toMembership(*join.Membership),
	})
}

type joinWithInviteReq struct {
	Rsvp string `json:"rsvp"`
}

func (s *Server) joinWithInvite(c *gin.Context) {
	var req joinWithInviteReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
	}
	m, err := s.svc.Invites.JoinWithInvite(c.Request.Context(), c.Param("token"), participant(c), parseRsvp(req.Rsvp))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMembership(*m))
}

type claimReq struct {
	DisplayName *string `json:"display_name"`
}

// claimGuest is unauthenticated like joinAsGuest: the invite token scopes the
// claim to the hangout it was issued for.
func (s *Server) claimGuest(c *gin.Context) {
	var req claimReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
	}
	token, err := s.svc.Invites.ClaimWithInvite(c.Request.Context(), c.Param("token"), c.Param("guestId"), req.DisplayName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type upgradeReq struct {
	GuestToken string `json:"guest_token" binding:"required"`
}

func (s *Server) upgradeGuest(c *gin.Context) {
	var req upgradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	guest, err := s.svc.Invites.UpgradeGuest(c.Request.Context(), req.GuestToken, participant(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guest_id": guest.ID, "converted_to_profile_id": guest.ConvertedToProfileID})
}
