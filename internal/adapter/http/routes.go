package http

import "github.com/labstack/echo/v4"

// Register mounts the loan and condition routes on g. Reads need only an
// authenticated caller; every write also passes staff.
func Register(g *echo.Group, lh *LoanHandler, ch *ConditionHandler, staff echo.MiddlewareFunc) {
	g.POST("/loans", lh.CreateLoan, staff)
	g.GET("/loans/by-number/:loan_number", lh.GetLoanByNumber)
	g.GET("/loans/:loan_id", lh.GetLoan)
	g.PATCH("/loans/:loan_id", lh.UpdateLoan, staff)
	g.POST("/loans/:loan_id/transitions", lh.Transition, staff)
	g.GET("/loans/:loan_id/transitions", lh.History)
	g.GET("/loans/:loan_id/next-statuses", lh.NextStatuses)
	g.PUT("/loans/:loan_id/staff", lh.AssignStaff, staff)

	g.POST("/loans/:loan_id/conditions", ch.Create, staff)
	g.GET("/loans/:loan_id/conditions", ch.ListByLoan)
	g.GET("/loans/:loan_id/conditions/summary", ch.Summary)
	g.GET("/conditions/overdue", ch.ListOverdue)
	g.GET("/conditions/:condition_id", ch.Get)
	g.PATCH("/conditions/:condition_id", ch.Update, staff)
	g.POST("/conditions/:condition_id/start", ch.Start, staff)
	g.POST("/conditions/:condition_id/complete", ch.Complete, staff)
	g.POST("/conditions/:condition_id/waive", ch.Waive, staff)
	g.POST("/conditions/:condition_id/expire", ch.Expire, staff)
	g.PUT("/conditions/:condition_id/assignee", ch.Assign, staff)
	g.PUT("/conditions/:condition_id/priority", ch.SetPriority, staff)
	g.DELETE("/conditions/:condition_id", ch.Delete, staff)
}
