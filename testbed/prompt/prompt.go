//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package prompt holds the typed prompt templates used by the testbed:
// answer generation, Q&A synthesis, topic tagging and judging.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

var (
	// answerPrompt instructs the chat model to answer from the retrieved
	// passages.
	answerPrompt = `You are a helpful assistant answering questions about a document.
Use the context passages below to answer. If the context does not contain the
answer, say so instead of guessing.

### Context
{{range .Documents}}---
{{.}}
{{end}}---

### Question
{{.Question}}

Answer:`
	answerPromptTemplate = template.Must(template.New("answerPrompt").Parse(answerPrompt))

	// synthesisPrompt instructs the generation model to produce one
	// question/answer pair grounded strictly in the seed passage.
	synthesisPrompt = `You are generating an evaluation question for a retrieval system.

Read the passage below and write ONE {{.QuestionType}} question about it,
together with its reference answer.

Rules:
1. The question must be answerable strictly from the passage. Do not rely on
   outside knowledge.
2. The reference answer must be fully supported by the passage text.
{{if .Complex}}3. A complex question requires combining at least two facts from the passage
   or reasoning over them; it must not be answerable by quoting a single
   sentence.
{{else}}3. A simple question asks for a single fact stated directly in the passage.
{{end}}
### Passage
{{.Passage}}

Output a single JSON object, nothing else:
{"question": "<the question>", "answer": "<the reference answer>"}`
	synthesisPromptTemplate = template.Must(template.New("synthesisPrompt").Parse(synthesisPrompt))

	// topicDiscoveryPrompt asks the model for a bounded topic vocabulary
	// covering a batch of questions.
	topicDiscoveryPrompt = `You are organizing evaluation questions into topics.

Read the questions below and propose at most {{.MaxTopics}} short topic labels
(one to three words each) that together cover all of them. Prefer fewer,
broader topics over many narrow ones.

### Questions
{{range .Questions}}- {{.}}
{{end}}
Output a single JSON array of strings, nothing else:
["<topic>", "<topic>", ...]`
	topicDiscoveryPromptTemplate = template.Must(template.New("topicDiscoveryPrompt").Parse(topicDiscoveryPrompt))

	// topicAssignPrompt asks the model to pick one label from the
	// vocabulary for a single question.
	topicAssignPrompt = `Assign the question below to exactly one topic from the list.

### Topics
{{range .Topics}}- {{.}}
{{end}}
### Question
{{.Question}}

Output the chosen topic label only, with no extra text.`
	topicAssignPromptTemplate = template.Must(template.New("topicAssignPrompt").Parse(topicAssignPrompt))

	// judgePrompt instructs the judge model to compare the agent answer
	// against the reference answer and emit a fixed two-line report.
	judgePrompt = `You are an expert evaluator. Judge whether the agent's answer matches the
reference answer for the question below.

### Scoring rules
1. The reference answer is the only ground truth. Even if you believe the
   agent's answer is more accurate, a mismatch with the reference answer is
   incorrect.
2. Formatting differences, paraphrases and equivalent writing are a match as
   long as every key entity of the reference answer is present and unchanged.
3. Missing or mismatched key information (numbers, units, conclusions,
   entities) is incorrect. A clarification request, deflection or refusal is
   incorrect.

### Input
Question: {{.Question}}
Agent answer: {{.AgentAnswer}}
Reference answer: {{.ReferenceAnswer}}

### Output requirements
Plain text, exactly two lines:
reasoning: [brief justification pointing at the aligned or misaligned facts]
verdict: [correct|incorrect]

Be assertive; do not hedge.`
	judgePromptTemplate = template.Must(template.New("judgePrompt").Parse(judgePrompt))
)

// AnswerData fills the answer prompt.
type AnswerData struct {
	// Documents are the retrieved context passages, in rank order.
	Documents []string
	// Question is the user question.
	Question string
}

// Answer renders the retrieval-augmented answer prompt.
func Answer(data AnswerData) (string, error) {
	return render(answerPromptTemplate, data)
}

// SynthesisData fills the Q&A synthesis prompt.
type SynthesisData struct {
	// Passage is the seed passage, verbatim.
	Passage string
	// QuestionType is "simple" or "complex".
	QuestionType string
	// Complex selects the complex-question rule variant.
	Complex bool
}

// Synthesis renders the Q&A synthesis prompt.
func Synthesis(data SynthesisData) (string, error) {
	return render(synthesisPromptTemplate, data)
}

// TopicDiscoveryData fills the topic discovery prompt.
type TopicDiscoveryData struct {
	// Questions is the batch of question texts.
	Questions []string
	// MaxTopics bounds the vocabulary size.
	MaxTopics int
}

// TopicDiscovery renders the topic vocabulary discovery prompt.
func TopicDiscovery(data TopicDiscoveryData) (string, error) {
	return render(topicDiscoveryPromptTemplate, data)
}

// TopicAssignData fills the topic assignment prompt.
type TopicAssignData struct {
	// Topics is the discovered vocabulary.
	Topics []string
	// Question is the question to label.
	Question string
}

// TopicAssign renders the topic assignment prompt.
func TopicAssign(data TopicAssignData) (string, error) {
	return render(topicAssignPromptTemplate, data)
}

// JudgeData fills the judge prompt.
type JudgeData struct {
	// Question posed to the agent.
	Question string
	// AgentAnswer produced during the run.
	AgentAnswer string
	// ReferenceAnswer is the ground truth.
	ReferenceAnswer string
}

// Judge renders the judge prompt.
func Judge(data JudgeData) (string, error) {
	return render(judgePromptTemplate, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
