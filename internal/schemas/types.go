package schemas

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"srm-evaluations/internal/evaluation"
	"srm-evaluations/internal/rubric"
)

// Score renders a decimal as a JSON number with two fractional digits.
func Score(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(evaluation.ScorePlaces))
}

type SubmitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	EvaluationID string `json:"evaluationId"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type EvaluationSummary struct {
	ID              string      `json:"id"`
	Category        string      `json:"category"`
	SubCategory     string      `json:"subCategory"`
	SupplierName    string      `json:"supplierName"`
	EvaluationMonth string      `json:"evaluationMonth"`
	TotalScore      json.Number `json:"totalScore"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type ListResponse struct {
	Success bool                `json:"success"`
	Data    []EvaluationSummary `json:"data"`
}

func Summarize(rec *evaluation.Record) EvaluationSummary {
	return EvaluationSummary{
		ID:              rec.ID,
		Category:        rec.Category,
		SubCategory:     rec.SubCategory,
		SupplierName:    rec.SupplierName,
		EvaluationMonth: rec.EvaluationMonth,
		TotalScore:      Score(rec.TotalScore),
		CreatedAt:       rec.CreatedAt,
	}
}

type ChoiceOut struct {
	Score json.Number `json:"score"`
	Label string      `json:"label"`
}

type QuestionOut struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Choices []ChoiceOut `json:"choices"`
}

type RubricOut struct {
	Questions  []QuestionOut `json:"questions"`
	HiddenKeys []string      `json:"hiddenKeys"`
}

type RubricResponse struct {
	Success bool      `json:"success"`
	Data    RubricOut `json:"data"`
}

type NamesResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
}

func Rubric(qs []rubric.Question, hidden []string) RubricOut {
	out := RubricOut{Questions: make([]QuestionOut, len(qs)), HiddenKeys: hidden}
	for i, q := range qs {
		qo := QuestionOut{Key: q.Key, Label: q.Label, Choices: make([]ChoiceOut, len(q.Choices))}
		for j, c := range q.Choices {
			qo.Choices[j] = ChoiceOut{Score: json.Number(c.Score.String()), Label: c.Label}
		}
		out.Questions[i] = qo
	}
	return out
}

// EvaluationSnapshot is the full record as archived to object storage.
type EvaluationSnapshot struct {
	ID              string                 `json:"id"`
	Category        string                 `json:"category"`
	SubCategory     string                 `json:"subCategory"`
	SupplierName    string                 `json:"supplierName"`
	EvaluationMonth string                 `json:"evaluationMonth"`
	Scores          map[string]json.Number `json:"scores"`
	TotalScore      json.Number            `json:"totalScore"`
	CreatedAt       time.Time              `json:"createdAt"`
}

func Snapshot(rec *evaluation.Record) EvaluationSnapshot {
	scores := make(map[string]json.Number, len(rec.Scores))
	for k, v := range rec.Scores {
		scores[k] = Score(v)
	}
	return EvaluationSnapshot{
		ID:              rec.ID,
		Category:        rec.Category,
		SubCategory:     rec.SubCategory,
		SupplierName:    rec.SupplierName,
		EvaluationMonth: rec.EvaluationMonth,
		Scores:          scores,
		TotalScore:      Score(rec.TotalScore),
		CreatedAt:       rec.CreatedAt,
	}
}
