package input

// UseCases bundles every use case a transport adapter drives.
type UseCases struct {
	Identity    IdentityUseCase
	Hangouts    HangoutUseCase
	Memberships MembershipUseCase
	Rsvp        RsvpUseCase
	Options     OptionUseCase
	Votes       VoteUseCase
	Resolution  ResolutionUseCase
	Invites     InviteUseCase
	Status      StatusUseCase
}
