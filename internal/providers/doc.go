// Package providers implements the Reviewer interface for each supported LLM
// provider.
//
// Supported providers: OpenAI (default), Anthropic (Claude), Google (Gemini),
// and Ollama / LM Studio for local models.
//
// Every provider makes exactly one completion call per review; failures are
// terminal and never retried. A missing API key surfaces as an authentication
// error at construction time, before any network I/O.
//
// Use [New] to obtain a Reviewer by provider name and model string.
package providers
