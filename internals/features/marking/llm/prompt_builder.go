// file: internals/features/marking/llm/prompt_builder.go
package llm

import (
	"fmt"
	"strings"

	guidemodel "ujianku_backend/internals/features/marking/guides/model"
)

// BuildMarkingPrompt render satu pasangan (jawaban, guide) jadi prompt
// evaluasi. Pure function: input sama → prompt sama persis. Kalau ada
// kolom JSON guide yang rusak, langsung gagal (format error) sebelum
// sempat memanggil provider.
func BuildMarkingPrompt(answerText string, maxMarks float64, guide *guidemodel.MarkingGuideModel) (string, error) {
	keyPoints, err := guide.KeyPointList()
	if err != nil {
		return "", &ValidationError{Field: "key_points", Reason: err.Error()}
	}
	rubric, err := guide.Rubric()
	if err != nil {
		return "", &ValidationError{Field: "marking_rubric", Reason: err.Error()}
	}
	criteria, err := guide.Criteria()
	if err != nil {
		return "", &ValidationError{Field: "evaluation_criteria", Reason: err.Error()}
	}
	mistakes, err := guide.CommonMistakeList()
	if err != nil {
		return "", &ValidationError{Field: "common_mistakes", Reason: err.Error()}
	}
	partials, err := guide.PartialCreditRuleList()
	if err != nil {
		return "", &ValidationError{Field: "partial_credit_rules", Reason: err.Error()}
	}

	var b strings.Builder

	b.WriteString("You are marking a student answer. Evaluate against this marking guide.\n\n")

	b.WriteString("## QUESTION\n")
	fmt.Fprintf(&b, "Maximum Marks: %g\n\n", maxMarks)

	b.WriteString("## MODEL ANSWER\n")
	b.WriteString(guide.MarkingGuideModelAnswer)
	b.WriteString("\n\n")

	b.WriteString("## KEY POINTS (Award marks for each)\n")
	for i, kp := range keyPoints {
		fmt.Fprintf(&b, "%d. %s (%g marks)", i+1, kp.Point, kp.Marks)
		if kp.Required {
			b.WriteString(" [REQUIRED]")
		}
		if len(kp.Keywords) > 0 {
			fmt.Fprintf(&b, " (keywords: %s)", strings.Join(kp.Keywords, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## EVALUATION CRITERIA\n")
	fmt.Fprintf(&b, "- Content Accuracy (%g%%): %s\n", guide.MarkingGuideContentAccuracyWeight*100, criteria.ContentAccuracy)
	fmt.Fprintf(&b, "- Completeness (%g%%): %s\n", guide.MarkingGuideCompletenessWeight*100, criteria.Completeness)
	fmt.Fprintf(&b, "- Clarity (%g%%): %s\n", guide.MarkingGuideClarityWeight*100, criteria.Clarity)
	fmt.Fprintf(&b, "- Technical Correctness (%g%%): %s\n", guide.MarkingGuideTechnicalCorrectnessWeight*100, criteria.TechnicalCorrectness)
	b.WriteString("\n")

	// urutan band rubrik tetap: excellent → poor
	b.WriteString("## MARKING RUBRIC\n")
	writeRubricBand(&b, "Excellent", rubric.Excellent)
	writeRubricBand(&b, "Good", rubric.Good)
	writeRubricBand(&b, "Satisfactory", rubric.Satisfactory)
	writeRubricBand(&b, "Poor", rubric.Poor)
	b.WriteString("\n")

	// section mistakes/partial credit disembunyikan kalau kosong
	if len(mistakes) > 0 {
		b.WriteString("## COMMON MISTAKES (Apply deductions)\n")
		for _, cm := range mistakes {
			fmt.Fprintf(&b, "- %s: -%g marks\n", cm.Mistake, cm.Deduction)
		}
		b.WriteString("\n")
	}

	if len(partials) > 0 {
		b.WriteString("## PARTIAL CREDIT RULES\n")
		for _, pr := range partials {
			fmt.Fprintf(&b, "- %s: award %g%% credit\n", pr.Condition, pr.CreditPercentage)
		}
		b.WriteString("\n")
	}

	if len(guide.MarkingGuideKeywords) > 0 {
		b.WriteString("## KEYWORDS\n")
		b.WriteString(strings.Join(guide.MarkingGuideKeywords, ", "))
		b.WriteString("\n\n")
	}

	b.WriteString("## STUDENT ANSWER\n")
	b.WriteString(answerText)
	b.WriteString("\n\n")

	b.WriteString("## TASK\n")
	b.WriteString("Grading instructions:\n")
	b.WriteString("- Recognize equivalent expressions of the same idea; do not require exact wording.\n")
	b.WriteString("- Apply the listed deductions when a common mistake appears in the answer.\n")
	b.WriteString("- Apply partial credit rules when an answer partially satisfies a key point.\n")
	b.WriteString("- Set requires_human_review=true when you are uncertain or the answer is ambiguous.\n")
	fmt.Fprintf(&b, "- awarded_marks must NOT exceed %g.\n\n", maxMarks)

	b.WriteString("Respond with ONLY a JSON object (no markdown):\n")
	fmt.Fprintf(&b, `{
  "awarded_marks": <number 0-%g>,
  "confidence_score": <0-1>,
  "content_accuracy_score": <number>,
  "completeness_score": <number>,
  "clarity_score": <number>,
  "technical_correctness_score": <number>,
  "feedback": "<constructive feedback>",
  "strengths": ["<strength 1>", "<strength 2>"],
  "weaknesses": ["<weakness 1>", "<weakness 2>"],
  "key_points_identified": [
    {"point": "<key point>", "found": true/false, "marks_awarded": <number>}
  ],
  "missing_points": ["<missing 1>", "<missing 2>"],
  "requires_human_review": true/false,
  "review_reason": "<reason or null>"
}`, maxMarks)

	return b.String(), nil
}

func writeRubricBand(b *strings.Builder, name string, band guidemodel.RubricBand) {
	fmt.Fprintf(b, "- %s (%g-%g): %s\n", name, band.Range[0], band.Range[1], band.Criteria)
}
