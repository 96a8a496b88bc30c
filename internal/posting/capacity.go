package posting

// Capacity rules. Counts come from the store; the decisions are pure.

// CanAcceptApplication reports whether the posting can take one more
// application: it must be published and under its applicant ceiling.
func CanAcceptApplication(p Posting, applicationCount int) bool {
	return p.Status == StatusPublished && applicationCount < p.MaxApplicants
}

// CanAssign reports whether one more assignee fits under max_assignees.
func CanAssign(p Posting, activeAssignments int) bool {
	return activeAssignments < p.MaxAssignees
}

// CanReopen reports whether a closed posting may go back to published.
func CanReopen(p Posting, activeAssignments int) bool {
	return activeAssignments < p.MaxAssignees
}
