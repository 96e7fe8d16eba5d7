package service

// Template keys known to the product. Keys outside this list are rejected.
const (
	KeyWelcome             = "welcome"
	KeyPasswordReset       = "password_reset"
	KeyInvoiceReceipt      = "invoice_receipt"
	KeyMembershipCancelled = "membership_cancelled"
	KeyTrialStarted        = "trial_started"
	KeyWaiverReminder      = "waiver_reminder"
)

type defaultTemplate struct {
	key     string
	subject string
	body    string
}

// defaults is ordered; listings follow this order.
var defaults = []defaultTemplate{
	{key: KeyWelcome, subject: "Welcome to {{gymName}}", body: "Hi {{firstName}},\n\nWelcome to {{gymName}}."},
	{key: KeyPasswordReset, subject: "Reset your {{gymName}} password", body: "Hi {{firstName}},\n\nUse this link to reset your password: {{resetUrl}}"},
	{key: KeyInvoiceReceipt, subject: "Receipt for invoice {{invoiceNumber}}", body: "Hi {{firstName}},\n\nWe received {{amount}} for invoice {{invoiceNumber}}."},
	{key: KeyMembershipCancelled, subject: "Your {{planName}} membership was cancelled", body: "Hi {{firstName}},\n\nYour {{planName}} membership ends on {{endDate}}."},
	{key: KeyTrialStarted, subject: "Your trial at {{gymName}} has started", body: "Hi {{firstName}},\n\nYour trial runs until {{endDate}}."},
	{key: KeyWaiverReminder, subject: "Please sign your waiver", body: "Hi {{firstName}},\n\nSign your waiver before your first visit: {{waiverUrl}}"},
}

func lookupDefault(key string) (defaultTemplate, bool) {
	for _, d := range defaults {
		if d.key == key {
			return d, true
		}
	}
	return defaultTemplate{}, false
}
