package api

import "github.com/labstack/echo/v4"

type Router struct {
	guests      *GuestController
	submissions *SubmissionController
	invitation  *InvitationController
}

func NewRouter(guests *GuestController, submissions *SubmissionController, invitation *InvitationController) *Router {
	return &Router{
		guests:      guests,
		submissions: submissions,
		invitation:  invitation,
	}
}

func (r *Router) Register(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/guest", r.guests.GetGuest)

	submissions := g.Group("/submissions")
	submissions.GET("", r.submissions.ListSubmissions)
	submissions.POST("", r.submissions.CreateSubmission)
	submissions.POST("/reload", r.submissions.ReloadSubmissions)

	g.GET("/invitation", r.invitation.GetInvitation)
	g.GET("/countdown", r.invitation.GetCountdown)

	e.GET("/ws/countdown", r.invitation.StreamCountdown)
}
