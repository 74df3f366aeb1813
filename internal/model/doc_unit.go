package model

const (
	UnitStatusCreated     = "CREATED"
	UnitStatusTranslating = "TRANSLATING"
	UnitStatusTranslated  = "TRANSLATED"
	UnitStatusFailed      = "FAILED"
)

const UnitTypeSentence = "sentence"

type DocUnit struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	UnitType   string `json:"unit_type"`
	OrderInDoc int    `json:"order_in_doc"`
	SourceText string `json:"source_text"`
	Status     string `json:"status"`
	Ctime      int64  `json:"ctime"`
}
