/**
 * @description
 * Local-only inspection state. An InspectionDraft exists from the moment an
 * agent starts an inspection until the checklist is submitted; it is never
 * persisted and is discarded on submission success or when the agent walks
 * away from the assignment.
 *
 * PriceAdjustment is a display/input aid: the server recomputes and validates
 * every price on submission, so nothing here is authoritative.
 */

package domain

import "time"

// ChecklistAnswer is a single answered checklist question.
type ChecklistAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	Deduction  int64  `json:"deduction"`
}

// ChecklistQuestion is one server-defined inspection question.
type ChecklistQuestion struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Options   []string `json:"options"`
	Mandatory bool     `json:"mandatory"`
}

// InspectionPhoto is a captured image staged for upload.
type InspectionPhoto struct {
	Label    string `json:"label"`
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// InspectionDraft holds in-progress inspection input for one assignment.
type InspectionDraft struct {
	AssignmentID     string            `json:"assignment_id"`
	Answers          []ChecklistAnswer `json:"answers"`
	Notes            string            `json:"notes"`
	RecommendedPrice int64             `json:"recommended_price"`
	Photos           []InspectionPhoto `json:"photos"`
	StartedAt        time.Time         `json:"started_at"`
}

// SetAnswer records an answer, replacing any prior answer for the question.
func (d *InspectionDraft) SetAnswer(a ChecklistAnswer) {
	for i, existing := range d.Answers {
		if existing.QuestionID == a.QuestionID {
			d.Answers[i] = a
			return
		}
	}
	d.Answers = append(d.Answers, a)
}

// TotalDeduction sums the itemized deductions across all answers.
func (d *InspectionDraft) TotalDeduction() int64 {
	var total int64
	for _, a := range d.Answers {
		total += a.Deduction
	}
	return total
}

// Deduction is one itemized price reduction found during inspection.
type Deduction struct {
	Reason string `json:"reason"`
	Amount int64  `json:"amount"`
}

// PriceAdjustment tracks original price minus itemized deductions against an
// editable final price.
type PriceAdjustment struct {
	OriginalPrice int64       `json:"original_price"`
	Deductions    []Deduction `json:"deductions"`
	FinalPrice    int64       `json:"final_price"`
}

// ComputedPrice is the original price less all deductions, floored at zero.
func (p PriceAdjustment) ComputedPrice() int64 {
	total := p.OriginalPrice
	for _, d := range p.Deductions {
		total -= d.Amount
	}
	if total < 0 {
		return 0
	}
	return total
}

// DeviationExceeds reports whether the final price strays from the computed
// price by more than limitPercent. Advisory only: the server enforces its own
// bounds on submission.
func (p PriceAdjustment) DeviationExceeds(limitPercent float64) bool {
	computed := p.ComputedPrice()
	if computed == 0 || limitPercent <= 0 {
		return false
	}
	diff := p.FinalPrice - computed
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(computed)*100 > limitPercent
}
