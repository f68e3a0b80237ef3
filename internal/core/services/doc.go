// Package services implements the core analysis pipeline: prompt
// composition, index building, retrieval-augmented classification, and
// verdict parsing. Services depend only on domain types and driven
// ports, never on concrete adapters.
package services
