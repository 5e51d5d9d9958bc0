package processor

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoCommonColumns is matched by errors returned from Merge when the
// datasets share no attribute columns.
var ErrNoCommonColumns = eris.New("datasets have no common columns")

// DownloadError reports an unreachable URL or a non-success HTTP response.
type DownloadError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s failed: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s failed: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// SchemaError reports two datasets that cannot be merged.
type SchemaError struct {
	Columns1 []string
	Columns2 []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf(
		"both datasets must have common columns in order to merge them (dataset 1: [%s], dataset 2: [%s])",
		strings.Join(e.Columns1, ", "),
		strings.Join(e.Columns2, ", "),
	)
}

func (e *SchemaError) Unwrap() error {
	return ErrNoCommonColumns
}
