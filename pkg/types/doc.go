// Package types defines the entity types, simulation configuration,
// pagination result and standard errors for the TaskFlow mock backend.
//
// Entities are plain structs with camelCase JSON tags; they are stored as JSON
// arrays under the keys listed in keys.go. Every entity type satisfies
// Entity so the generic collection store can assign identifiers.
package types
