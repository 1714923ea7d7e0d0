// Package services implements the driving ports using driven ports.
// Services contain the business logic and are adapter-agnostic.
package services
