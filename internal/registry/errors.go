package registry

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
)

// MaxDeleteBatch is the largest digest list one BatchDeleteImage call accepts.
const MaxDeleteBatch = 100

var ErrBatchTooLarge = fmt.Errorf("delete batch exceeds %d digests", MaxDeleteBatch)

// CredentialError means the named profile could not produce credentials.
type CredentialError struct {
	Op      string
	Profile string
	Err     error
}

func (e *CredentialError) Error() string {
	profile := e.Profile
	if profile == "" {
		profile = "default"
	}
	return fmt.Sprintf("%s: resolve credentials for profile %q: %v", e.Op, profile, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// TransportError wraps any failed registry API call.
type TransportError struct {
	Op     string
	Region string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Region, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

var credentialCodes = map[string]bool{
	"NoCredentialProviders": true,
	"SharedCredsLoad":       true,
}

func isCredentialFailure(err error) bool {
	var missing session.SharedConfigProfileNotExistsError
	if errors.As(err, &missing) {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return credentialCodes[aerr.Code()]
	}
	return false
}

// classify turns an SDK failure into a CredentialError or TransportError.
func classify(op, profile, region string, err error) error {
	if err == nil {
		return nil
	}
	if isCredentialFailure(err) {
		return &CredentialError{Op: op, Profile: profile, Err: err}
	}
	return &TransportError{Op: op, Region: region, Err: err}
}
