// Package source provides built-in weight source implementations.
//
// Weight sources produce the weighted items handed to the Grouper.
// The package includes:
//
//   - Static: Fixed list of items
//   - Steps: One item per Gherkin feature file, weighted by its step count
//   - Scenarios: One item per scenario ("path:line"), weighted by its steps
//
// Custom sources can be implemented by satisfying the types.WeightSource interface.
package source
