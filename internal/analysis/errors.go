package analysis

import "errors"

// ErrSchemaViolation indicates the model produced output that failed
// required-field or enum-membership checks twice within one invocation.
var ErrSchemaViolation = errors.New("model output violates the expected schema")
