package shared

// Workshop permissions declared for RBAC.
const (
	PermJobCardView     = "jobcard.view"
	PermJobCardCreate   = "jobcard.create"
	PermJobCardAssign   = "jobcard.assign"
	PermJobCardWork     = "jobcard.work"
	PermJobCardComplete = "jobcard.complete"

	PermFinanceResolve = "finance.resolve"
	PermInvoiceCreate  = "invoice.create"
	PermInvoiceView    = "invoice.view"

	PermDashboardView = "dashboard.view"
	PermRBACView      = "rbac.view"
)

// WorkshopScopes lists every permission the service checks.
func WorkshopScopes() []string {
	return []string{
		PermJobCardView,
		PermJobCardCreate,
		PermJobCardAssign,
		PermJobCardWork,
		PermJobCardComplete,
		PermFinanceResolve,
		PermInvoiceCreate,
		PermInvoiceView,
		PermDashboardView,
		PermRBACView,
	}
}
