package orchestratornode

import (
	"math"
	"strings"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

const (
	// ApprovalThreshold is inclusive.
	ApprovalThreshold = 5.0
	defaultScore      = 7.0
)

// Review is a verdict on the 1-10 scale with a single approval flag.
type Review struct {
	Kind     contractx.ReviewKind `json:"review_type"`
	Approved bool                 `json:"approved"`
	Score    float64              `json:"score"`
	Issues   []string             `json:"issues"`
}

func (r Review) Passes() bool {
	return r.Approved && r.Score >= ApprovalThreshold
}

// NormalizeVerdict resolves the approval field aliases and rescales 0-1
// scores. An absent or non-finite score counts as 7.0.
func NormalizeVerdict(v contractx.Verdict) Review {
	approved := v.Approved != nil && *v.Approved
	if !approved && v.Approval != nil {
		approved = *v.Approval
	}

	score := defaultScore
	if v.Score != nil && !math.IsNaN(*v.Score) && !math.IsInf(*v.Score, 0) {
		score = *v.Score
	}

	issues := make([]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		if issue = strings.TrimSpace(issue); issue != "" {
			issues = append(issues, issue)
		}
	}

	return Review{
		Kind:     v.Kind,
		Approved: approved,
		Score:    NormalizeScore(score),
		Issues:   issues,
	}
}

// NormalizeScore maps scores at or below 1.0 onto the 1-10 scale with one
// decimal. Larger scores are returned unchanged.
func NormalizeScore(score float64) float64 {
	if score <= 1.0 {
		return math.Round(score*100) / 10
	}
	return score
}
