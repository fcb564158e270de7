package errors

import "fmt"

// Wrap adds context to an error at a package boundary. A nil err yields nil,
// so it is safe to use inline on a returned error.
//
// The original error chain is preserved, so errors.Is() checks keep working:
//
//	if err := table.Load(path); err != nil {
//	    return errors.Wrap(err, "failed to load pattern file")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a format string for the context message:
//
//	return errors.Wrapf(err, "failed to repair %s", path)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
