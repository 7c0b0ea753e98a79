// Package services implements the driving port interfaces.
// Services contain the core business logic: the mapping loader, the value
// pipeline and the conversion engine, plus the services that orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO dependencies.
package services
