// Package llm asks a chat-completion model for the semantic fields of an
// activity (title, description, category, tags, events) and decodes its
// answer.
//
// Providers speak the OpenAI-compatible chat completions API; GitHub Models
// and OpenAI are supported. Parser.Parse never returns an error: a missing
// provider, a failed request or an undecodable answer all mean "no LLM
// contribution" and the caller continues with rule-based extraction.
package llm
