//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package model

import "time"

// Error type constants for ResponseError.Type field.
const (
	ErrorTypeAPIError = "api_error"
	ErrorTypeRunError = "run_error"
)

// Choice represents a single completion choice.
type Choice struct {
	// Index is the index of the choice.
	Index int `json:"index"`
	// Message is the message content.
	Message Message `json:"message,omitempty"`
	// FinishReason is the reason the choice was finished.
	// "stop", "length", "content_filter", etc.
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`
	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`
	// TotalTokens is the total number of tokens in the response.
	TotalTokens int `json:"total_tokens"`
}

// Response is the response from the model.
type Response struct {
	// ID is the provider-assigned identifier of the completion.
	ID string `json:"id,omitempty"`
	// Model is the model that produced the completion.
	Model string `json:"model,omitempty"`
	// Created is the unix timestamp the completion was created at.
	Created int64 `json:"created,omitempty"`
	// Choices contains the completion choices.
	Choices []Choice `json:"choices,omitempty"`
	// Usage contains token usage information.
	Usage *Usage `json:"usage,omitempty"`
	// Error carries an API-level error returned by the provider.
	Error *ResponseError `json:"error,omitempty"`
	// Timestamp is the local time the response was received.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ResponseError represents an API-level error in a response.
type ResponseError struct {
	// Message is a human-readable error description.
	Message string `json:"message"`
	// Type categorizes the error.
	Type string `json:"type"`
}

// Content returns the text content of the first choice, or the empty string
// when the response carries no choices.
func (r *Response) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
