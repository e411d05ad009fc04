package eslint

// Message is one ESLint diagnostic. RuleID is empty for fatal parse errors,
// which ESLint reports with a null ruleId.
type Message struct {
	RuleID    string `json:"ruleId"`
	Severity  int    `json:"severity"`
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine,omitempty"`
	EndColumn int    `json:"endColumn,omitempty"`
	Fatal     bool   `json:"fatal,omitempty"`
}

// Result is ESLint's output for a single file.
type Result struct {
	FilePath            string    `json:"filePath"`
	Messages            []Message `json:"messages"`
	ErrorCount          int       `json:"errorCount"`
	WarningCount        int       `json:"warningCount"`
	FixableErrorCount   int       `json:"fixableErrorCount"`
	FixableWarningCount int       `json:"fixableWarningCount"`
}
