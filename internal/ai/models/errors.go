package models

import "fmt"

// UnknownModelError is returned when a name is not in the registry.
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("invalid AI model name: %s", e.Name)
}

// ConfigurationError is returned when a model cannot be initialized because
// its configuration, credentials or dependencies are unusable.
type ConfigurationError struct {
	Model string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s model configuration: %v", e.Model, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// BackendError is returned when the remote chat completion call fails.
type BackendError struct {
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
