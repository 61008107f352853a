package demo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/answer"
	"github.com/kdoneva/cassandra-as-vector-store/internal/core/vectorstore"
)

func TestReport_Print(t *testing.T) {
	sep := strings.Repeat("-", 100)

	tests := []struct {
		name    string
		report  *Report
		wantOut string
	}{
		{
			name: "回答あり",
			report: &Report{
				Question: "Who uses Amazon Q?",
				Results: []*vectorstore.Document{
					{Content: "Mateo also uses AmazonQ"},
					{Content: "Katerina does not know python programming however she uses AmazonQ to do it!"},
				},
				Outcome: answer.Outcome{Text: "Mateo and Katerina use AmazonQ."},
			},
			wantOut: "Your question is: Who uses Amazon Q?\n" +
				"What I found in the DB matching this context is:\n" +
				sep + "\n" +
				"-> Mateo also uses AmazonQ\n" +
				sep + "\n" +
				"-> Katerina does not know python programming however she uses AmazonQ to do it!\n" +
				sep + "\n" +
				"The answer from the LLM on the given context is: Mateo and Katerina use AmazonQ.\n",
		},
		{
			name: "回答生成失敗",
			report: &Report{
				Question: "Who jumped over the dog?",
				Outcome:  answer.Outcome{Failure: answer.FailureAuthentication, Err: answer.ErrAuthentication},
			},
			wantOut: "Your question is: Who jumped over the dog?\n" +
				"What I found in the DB matching this context is:\n" +
				sep + "\n" +
				"Error making LLM API request: llm authentication failed\n" +
				"The answer from the LLM on the given context is: None (authentication)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.report.Print(&buf))
			assert.Equal(t, tt.wantOut, buf.String())
		})
	}
}
