package production

import "github.com/arthurelgindell/storyreel/internal/domain"

// transitions lists the forward edges of the job lifecycle. A job may bounce
// between matching and generating while scenes resolve, and any non-terminal
// state may fail. Terminal states have no outgoing edges.
var transitions = map[domain.JobStatus][]domain.JobStatus{
	domain.JobPending:    {domain.JobMatching, domain.JobFailed},
	domain.JobMatching:   {domain.JobGenerating, domain.JobAssembling, domain.JobFailed},
	domain.JobGenerating: {domain.JobMatching, domain.JobAssembling, domain.JobFailed},
	domain.JobAssembling: {domain.JobCompleted, domain.JobFailed},
}

// CanTransition reports whether a job may move from one status to another.
// Staying in the same status is always allowed for progress-only updates.
func CanTransition(from, to domain.JobStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
