package domain

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Result struct {
	OptionID   string `json:"optionId"`
	OptionText string `json:"optionText"`
	Votes      int64  `json:"votes"`
}
