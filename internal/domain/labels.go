package domain

// Human readable labels for the closed enum types. Kept in lookup tables so
// the domain values stay free of presentation concerns.

var loanTypeLabels = map[LoanType]string{
	LoanTypeLent:     "Lent",
	LoanTypeBorrowed: "Borrowed",
}

var loanStatusLabels = map[LoanStatus]string{
	LoanStatusActive:        "Active",
	LoanStatusPartiallyPaid: "Partially Paid",
	LoanStatusPaidOff:       "Paid Off",
	LoanStatusOverdue:       "Overdue",
	LoanStatusCancelled:     "Cancelled",
}

var frequencyLabels = map[Frequency]string{
	FrequencyDaily:     "Daily",
	FrequencyWeekly:    "Weekly",
	FrequencyMonthly:   "Monthly",
	FrequencyQuarterly: "Quarterly",
	FrequencyYearly:    "Yearly",
}

var recurringStatusLabels = map[RecurringStatus]string{
	RecurringStatusActive:    "Active",
	RecurringStatusPaused:    "Paused",
	RecurringStatusCancelled: "Cancelled",
	RecurringStatusCompleted: "Completed",
}

func (t LoanType) Label() string        { return loanTypeLabels[t] }
func (s LoanStatus) Label() string      { return loanStatusLabels[s] }
func (f Frequency) Label() string       { return frequencyLabels[f] }
func (s RecurringStatus) Label() string { return recurringStatusLabels[s] }

// Valid reports whether the value is one of the closed set.

func (t LoanType) Valid() bool        { _, ok := loanTypeLabels[t]; return ok }
func (s LoanStatus) Valid() bool      { _, ok := loanStatusLabels[s]; return ok }
func (f Frequency) Valid() bool       { _, ok := frequencyLabels[f]; return ok }
func (s RecurringStatus) Valid() bool { _, ok := recurringStatusLabels[s]; return ok }
