// Package config defines the format-agnostic workflow configuration model
// and the Loader interface that produces it.
//
// The `config.Model` is the single source of truth for the `workflow`
// package. Concrete loaders, such as the HCL one, live in separate packages.
package config
