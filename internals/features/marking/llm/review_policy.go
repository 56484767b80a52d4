// file: internals/features/marking/llm/review_policy.go
package llm

import (
	"fmt"
	"math"
	"strings"
)

// Ambang kebijakan review
const (
	LowConfidenceThreshold = 0.7
	HighScorePercentage    = 95.0
	LowScorePercentage     = 20.0
	BorderlineWindow       = 5.0
)

// ambang kelulusan/grade yang rawan sengketa
var borderlineThresholds = []float64{50, 60, 70, 80, 90}

// EvaluateReviewPolicy keputusan deterministik butuh-review-manusia.
// Pure function: (judgment, awarded, max) sama → hasil sama. Semua
// aturan dievaluasi (tidak short-circuit) supaya reviewer lihat semua
// alasan sekaligus.
func EvaluateReviewPolicy(j *Judgment, awardedMarks, maxMarks float64) (bool, []string) {
	reasons := []string{}

	// 1. model sendiri minta review
	if j.RequiresHumanReview {
		if r := strings.TrimSpace(j.ReviewReason); r != "" {
			reasons = append(reasons, r)
		} else {
			reasons = append(reasons, "Model requested human review")
		}
	}

	// 2. confidence rendah
	if j.ConfidenceScore < LowConfidenceThreshold {
		reasons = append(reasons, fmt.Sprintf("Low confidence (%.1f%%)", j.ConfidenceScore*100))
	}

	// 3. skor ekstrem perlu verifikasi
	pct := 0.0
	if maxMarks > 0 {
		pct = awardedMarks / maxMarks * 100
	}
	if pct >= HighScorePercentage {
		reasons = append(reasons, fmt.Sprintf("High score (%.1f%%) requires verification", pct))
	}
	if pct <= LowScorePercentage {
		reasons = append(reasons, fmt.Sprintf("Low score (%.1f%%) requires verification", pct))
	}

	// 4. borderline: dekat ambang grade (cukup satu, ambang pertama
	//    dalam jendela ±5)
	for _, t := range borderlineThresholds {
		if math.Abs(pct-t) <= BorderlineWindow {
			reasons = append(reasons, fmt.Sprintf("Borderline score near %g%% threshold", t))
			break
		}
	}

	return len(reasons) > 0, reasons
}

// ClampMarks paksa awarded ke [0, max] apapun kata model
func ClampMarks(awarded, max float64) float64 {
	if awarded < 0 {
		return 0
	}
	if awarded > max {
		return max
	}
	return awarded
}
