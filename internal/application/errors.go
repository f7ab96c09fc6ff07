package application

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrScanInProgress  = errors.New("a scan is already in progress")
	ErrNothingToDelete = errors.New("no never-pulled images to delete")
)

// ValidationError reports a repository summary missing required fields.
type ValidationError struct {
	RepositoryName string
	Missing        []string
	Summary        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("repository data is incomplete: missing %s: %s", strings.Join(e.Missing, ", "), e.Summary)
}
