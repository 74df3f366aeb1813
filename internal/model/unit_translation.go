package model

type UnitTranslation struct {
	ID             string `json:"id"`
	UnitID         string `json:"unit_id"`
	TargetLang     string `json:"target_lang"`
	TranslatedText string `json:"translated_text"`
	Ctime          int64  `json:"ctime"`
}
