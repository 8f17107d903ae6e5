package storage

import "fmt"

// RemoteError is a store-side rejection: the request reached the store and
// the store refused it. Status carries the HTTP code when the adapter has
// one.
type RemoteError struct {
	Op     string
	Status int
	Msg    string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote store %s: status %d: %s", e.Op, e.Status, e.Msg)
	}
	return fmt.Sprintf("remote store %s: %s", e.Op, e.Msg)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NetworkError is a transport failure: the request never got a store
// decision.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StorageError is an object-storage failure (image upload). Callers treat
// it as "no image provided" rather than failing the surrounding operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("object storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConfigError reports store configuration that cannot work, like a missing
// base URL or API key. Raised at construction, never mid-operation.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("store configuration: %s", e.Reason)
}
