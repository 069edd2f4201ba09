package model

// LanguageDescriptor identifies a programming language option for execution
// and editor syntax highlighting.
type LanguageDescriptor struct {
	Key     string   `json:"key"`
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Editor  string   `json:"editor"`
	Aliases []string `json:"aliases"`
}
