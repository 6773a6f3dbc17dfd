package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScoreColumns lists the scored columns of supplier_evaluations in table order.
var ScoreColumns = []string{
	"portfolio_diversity",
	"credit_term",
	"capacity_utilisation",
	"strategic_partnership",
	"business_etiquette",
	"inventory_carrying",
	"advance_notice",
	"knowledge_sharing",
	"legal_contracts",
	"cost_competitiveness",
	"cost_model",
	"sdp_rating",
	"quality_glo",
	"quality_gsqa_ing",
	"sc_notification",
	"supplier_audit",
	"labelling_rating",
	"supplier_quality",
}

type Evaluation struct {
	ID              string `db:"id"`
	Category        string `db:"category"`
	SubCategory     string `db:"sub_category"`
	SupplierName    string `db:"supplier_name"`
	EvaluationMonth string `db:"evaluation_month"`

	PortfolioDiversity   decimal.Decimal `db:"portfolio_diversity"`
	CreditTerm           decimal.Decimal `db:"credit_term"`
	CapacityUtilisation  decimal.Decimal `db:"capacity_utilisation"`
	StrategicPartnership decimal.Decimal `db:"strategic_partnership"`
	BusinessEtiquette    decimal.Decimal `db:"business_etiquette"`
	InventoryCarrying    decimal.Decimal `db:"inventory_carrying"`
	AdvanceNotice        decimal.Decimal `db:"advance_notice"`
	KnowledgeSharing     decimal.Decimal `db:"knowledge_sharing"`
	LegalContracts       decimal.Decimal `db:"legal_contracts"`
	CostCompetitiveness  decimal.Decimal `db:"cost_competitiveness"`
	CostModel            decimal.Decimal `db:"cost_model"`
	SDPRating            decimal.Decimal `db:"sdp_rating"`
	QualityGLO           decimal.Decimal `db:"quality_glo"`
	QualityGSQAIng       decimal.Decimal `db:"quality_gsqa_ing"`
	SCNotification       decimal.Decimal `db:"sc_notification"`
	SupplierAudit        decimal.Decimal `db:"supplier_audit"`
	LabellingRating      decimal.Decimal `db:"labelling_rating"`
	SupplierQuality      decimal.Decimal `db:"supplier_quality"`

	TotalScore decimal.Decimal `db:"total_score"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Score returns the field backing a score column, nil for unknown columns.
func (e *Evaluation) Score(column string) *decimal.Decimal {
	switch column {
	case "portfolio_diversity":
		return &e.PortfolioDiversity
	case "credit_term":
		return &e.CreditTerm
	case "capacity_utilisation":
		return &e.CapacityUtilisation
	case "strategic_partnership":
		return &e.StrategicPartnership
	case "business_etiquette":
		return &e.BusinessEtiquette
	case "inventory_carrying":
		return &e.InventoryCarrying
	case "advance_notice":
		return &e.AdvanceNotice
	case "knowledge_sharing":
		return &e.KnowledgeSharing
	case "legal_contracts":
		return &e.LegalContracts
	case "cost_competitiveness":
		return &e.CostCompetitiveness
	case "cost_model":
		return &e.CostModel
	case "sdp_rating":
		return &e.SDPRating
	case "quality_glo":
		return &e.QualityGLO
	case "quality_gsqa_ing":
		return &e.QualityGSQAIng
	case "sc_notification":
		return &e.SCNotification
	case "supplier_audit":
		return &e.SupplierAudit
	case "labelling_rating":
		return &e.LabellingRating
	case "supplier_quality":
		return &e.SupplierQuality
	}
	return nil
}
