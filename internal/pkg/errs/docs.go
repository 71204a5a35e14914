// Package errs provides the typed errors shared by the ordering service.
//
// Every error type follows the same shape:
//   - a sentinel variable (e.g. ErrValueIsInvalid) usable with errors.Is
//   - a struct carrying the details (parameter name, offending value, cause)
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// The sentinels map onto the failure taxonomy of the conversation core:
//   - ErrValueIsInvalid, ErrValueIsRequired, ErrValueIsOutOfRange: validation
//     errors, local to one conversation step, answered with a re-prompt
//   - ErrConcurrencyConflict (matched by VersionIsInvalidError): a concurrent
//     write to the same session, retried once before apologising
//   - ErrIntegrationFailure: QR rendering, artifact upload, spreadsheet export
//     or messaging failed; never invalidates an order
//   - ErrVerificationConflict: the verification token matched no pending order
//   - ErrObjectNotFound: lookups that matched nothing
package errs
