package transaction

import "fmt"

// HandleError annotates a failure inside a transactional closure with the
// transaction name and the stage that failed.
func HandleError(operation, stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", operation, stage, err)
}
