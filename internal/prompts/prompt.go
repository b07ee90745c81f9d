// Package prompts holds the instructions and response specifications sent
// to the reasoning service for each classification stage. Instructions
// are tunable through override files; specifications define the response
// contract the engine parses and are never overridden.
package prompts

// Override is an instruction replacement for one stage.
type Override struct {
	Stage        Stage  `json:"stage"`
	Instructions string `json:"instructions"`
	Source       string `json:"source"`
}
