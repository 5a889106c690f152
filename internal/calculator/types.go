package calculator

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Expression string `json:"expression"`
	Result     string `json:"result"` // plain decimal, trailing zeros stripped
}

// DisplayResponse is the JSON response for every keypad endpoint.
type DisplayResponse struct {
	Display    string      `json:"display"`
	Expression string      `json:"expression"`
	Failed     bool        `json:"failed"`
	Steps      []PressStep `json:"steps,omitempty"`
}

// PressRequest is the JSON body for POST /calculator/press.
type PressRequest struct {
	Keys string `json:"keys"` // e.g. "3+4*2="
}

// PressStep records the display after one key of a press request.
type PressStep struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}
