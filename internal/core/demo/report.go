package demo

import (
	"fmt"
	"io"
	"strings"
)

var separator = strings.Repeat("-", 100)

// Print は質問・検索結果・回答を人が読める形式で出力する
func (r *Report) Print(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Your question is: %s\n", r.Question)
	b.WriteString("What I found in the DB matching this context is:\n")
	b.WriteString(separator + "\n")
	for _, doc := range r.Results {
		fmt.Fprintf(&b, "-> %s\n", doc.Content)
		b.WriteString(separator + "\n")
	}

	if !r.Outcome.OK() && r.Outcome.Err != nil {
		fmt.Fprintf(&b, "Error making LLM API request: %v\n", r.Outcome.Err)
	}
	fmt.Fprintf(&b, "The answer from the LLM on the given context is: %s\n", r.Outcome)

	_, err := io.WriteString(w, b.String())
	return err
}
