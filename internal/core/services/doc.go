// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never construct their collaborators; every adapter is
// injected by the caller and owned by it.
package services
