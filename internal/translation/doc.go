// Package translation provides the single-prompt translation client used by
// the batch orchestrator. It talks to Azure OpenAI, OpenAI or Gemini chat
// completion endpoints and turns every failure into an error-marker result
// so that one bad cell never aborts a batch.
package translation
