// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Scoring is delegated to the engine package; services add framework lookup,
// advice generation, drafting and the chat corpus on top of it.
package services
